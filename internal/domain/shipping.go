package domain

import "errors"

// QuoteFetchState enumerates the shipping quote selector states for one
// checkout session.
type QuoteFetchState string

const (
	// QuoteStateNoDestination means destination and carrier are unknown.
	QuoteStateNoDestination QuoteFetchState = "no_destination"
	// QuoteStateAwaitingCarrier means the destination is known but no carrier
	// has been chosen, so no fetch is permitted yet.
	QuoteStateAwaitingCarrier QuoteFetchState = "awaiting_carrier"
	// QuoteStateFetching means a quote-list fetch is in flight. Any prior
	// selection was cleared on entering this state.
	QuoteStateFetching QuoteFetchState = "fetching"
	// QuoteStateQuotesAvailable means the fetch succeeded with at least one
	// quote; the first quote is auto-selected as the default.
	QuoteStateQuotesAvailable QuoteFetchState = "quotes_available"
	// QuoteStateNoQuotes means the fetch succeeded with zero quotes. Distinct
	// from a failure: the user must pick another carrier or destination, and
	// shipping never silently defaults to zero cost.
	QuoteStateNoQuotes QuoteFetchState = "no_quotes"
	// QuoteStateFetchFailed means the fetch errored. Recoverable by
	// re-selecting carrier or destination.
	QuoteStateFetchFailed QuoteFetchState = "fetch_failed"
)

var (
	// ErrCarrierRequiresDestination guards carrier choice before a destination exists.
	ErrCarrierRequiresDestination = errors.New("shipping: destination required before choosing a carrier")
	// ErrNoQuotesToSelect is returned when selecting a quote outside QuotesAvailable.
	ErrNoQuotesToSelect = errors.New("shipping: no quote set available")
	// ErrQuoteIndexOutOfRange is returned for a selection index outside the fetched set.
	ErrQuoteIndexOutOfRange = errors.New("shipping: quote index out of range")
)

// ShippingSelection is the per-session quote selector state machine.
//
// The central invariant: the selected quote always belongs to the
// most-recently-fetched quote set. Any mutation to destination or carrier
// bumps Generation, discards quotes and selection, and moves the machine
// back to AwaitingCarrier/NoDestination, so a stale, now-invalid cost can
// never silently be charged. Fetch results are applied only when their
// generation token still matches, so an older fetch resolving after a newer
// one is discarded (last input wins, not last response).
type ShippingSelection struct {
	Destination   Destination
	CarrierCode   string
	State         QuoteFetchState
	Generation    uint64
	Quotes        []ShippingQuote
	SelectedIndex int
}

// NewShippingSelection returns the initial selector state.
func NewShippingSelection() ShippingSelection {
	return ShippingSelection{State: QuoteStateNoDestination, SelectedIndex: -1}
}

func (s *ShippingSelection) invalidate() {
	s.Generation++
	s.Quotes = nil
	s.SelectedIndex = -1
	s.CarrierCode = ""
	if s.Destination.HasTarget() {
		s.State = QuoteStateAwaitingCarrier
	} else {
		s.State = QuoteStateNoDestination
	}
}

// SetDestination replaces the destination and invalidates carrier, quotes,
// and selection.
func (s *ShippingSelection) SetDestination(d Destination) {
	s.Destination = d
	s.invalidate()
}

// SetCarrier chooses a carrier and moves the machine to Fetching. It returns
// the generation token the eventual fetch result must present.
func (s *ShippingSelection) SetCarrier(code string) (uint64, error) {
	if !s.Destination.HasTarget() {
		return 0, ErrCarrierRequiresDestination
	}
	s.invalidate()
	s.CarrierCode = code
	s.State = QuoteStateFetching
	return s.Generation, nil
}

// ApplyQuotes installs a fetch result. A result carrying a stale generation
// token is discarded and the method reports false. On success with a
// non-empty set the first quote is auto-selected.
func (s *ShippingSelection) ApplyQuotes(generation uint64, quotes []ShippingQuote) bool {
	if generation != s.Generation || s.State != QuoteStateFetching {
		return false
	}
	if len(quotes) == 0 {
		s.Quotes = nil
		s.SelectedIndex = -1
		s.State = QuoteStateNoQuotes
		return true
	}
	s.Quotes = quotes
	s.SelectedIndex = 0
	s.State = QuoteStateQuotesAvailable
	return true
}

// ApplyFetchFailure records a transport or server error for the in-flight
// fetch. Stale failures are discarded.
func (s *ShippingSelection) ApplyFetchFailure(generation uint64) bool {
	if generation != s.Generation || s.State != QuoteStateFetching {
		return false
	}
	s.Quotes = nil
	s.SelectedIndex = -1
	s.State = QuoteStateFetchFailed
	return true
}

// SelectQuote reselects a member of the current quote set.
func (s *ShippingSelection) SelectQuote(index int) error {
	if s.State != QuoteStateQuotesAvailable {
		return ErrNoQuotesToSelect
	}
	if index < 0 || index >= len(s.Quotes) {
		return ErrQuoteIndexOutOfRange
	}
	s.SelectedIndex = index
	return nil
}

// SelectedQuote returns the currently selected quote, or nil when none.
func (s *ShippingSelection) SelectedQuote() *ShippingQuote {
	if s.State != QuoteStateQuotesAvailable {
		return nil
	}
	if s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Quotes) {
		return nil
	}
	quote := s.Quotes[s.SelectedIndex]
	return &quote
}
