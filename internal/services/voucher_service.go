package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tokosetara/api/internal/repositories"
)

var (
	errVoucherRepositoryRequired = errors.New("voucher service: repository is required")
	errVoucherCatalogRequired    = errors.New("voucher service: catalog is required")
	errVoucherClockRequired      = errors.New("voucher service: clock is required")
)

// ErrVoucherInvalidInput indicates the caller supplied invalid input.
var ErrVoucherInvalidInput = errors.New("voucher service: invalid input")

// ErrVoucherNotFound indicates the code does not match an active voucher.
var ErrVoucherNotFound = errors.New("voucher service: voucher not found")

// ErrVoucherUnavailable indicates a backend dependency failed.
var ErrVoucherUnavailable = errors.New("voucher service: unavailable")

// VoucherServiceDeps wires the session store and voucher catalog.
type VoucherServiceDeps struct {
	Repository repositories.SessionRepository
	Catalog    VoucherCatalog
	Clock      func() time.Time
	Logger     func(context.Context, string, map[string]any)
}

type voucherService struct {
	repo    repositories.SessionRepository
	catalog VoucherCatalog
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
}

// NewVoucherService constructs a VoucherService enforcing dependency validation.
func NewVoucherService(deps VoucherServiceDeps) (VoucherService, error) {
	if deps.Repository == nil {
		return nil, errVoucherRepositoryRequired
	}
	if deps.Catalog == nil {
		return nil, errVoucherCatalogRequired
	}
	if deps.Clock == nil {
		return nil, errVoucherClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &voucherService{
		repo:    deps.Repository,
		catalog: deps.Catalog,
		now:     func() time.Time { return deps.Clock().UTC() },
		logger:  logger,
	}, nil
}

// Apply resolves the code and attaches the voucher to the session. A session
// carries at most one voucher, so applying replaces any previous one.
func (s *voucherService) Apply(ctx context.Context, key, code string) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	code = strings.ToUpper(strings.TrimSpace(code))
	if key == "" || code == "" {
		return CheckoutSession{}, ErrVoucherInvalidInput
	}

	voucher, err := s.catalog.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrVoucherNotFound) {
			return CheckoutSession{}, ErrVoucherNotFound
		}
		return CheckoutSession{}, ErrVoucherUnavailable
	}

	session, err := s.repo.Get(ctx, key)
	if err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrVoucherUnavailable, ErrVoucherNotFound)
	}
	session = normaliseSession(session, key)

	voucherCopy := voucher
	session.Voucher = &voucherCopy
	session.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrVoucherUnavailable, nil)
	}

	s.logger(ctx, "voucher.applied", map[string]any{
		"sessionKey": key,
		"code":       code,
	})
	return session, nil
}

// Remove detaches the voucher from the session. Removing when none is applied
// is a no-op.
func (s *voucherService) Remove(ctx context.Context, key string) (CheckoutSession, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return CheckoutSession{}, ErrVoucherInvalidInput
	}

	session, err := s.repo.Get(ctx, key)
	if err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrVoucherUnavailable, ErrVoucherNotFound)
	}
	session = normaliseSession(session, key)

	if session.Voucher == nil {
		return session, nil
	}
	session.Voucher = nil
	session.UpdatedAt = s.now()

	if err := s.repo.Save(ctx, session); err != nil {
		return CheckoutSession{}, translateRepoError(err, ErrVoucherUnavailable, nil)
	}

	s.logger(ctx, "voucher.removed", map[string]any{"sessionKey": key})
	return session, nil
}

// StaticVoucherCatalog serves vouchers from a fixed in-memory set. Suitable
// for campaign sets that ship with a deploy.
type StaticVoucherCatalog struct {
	vouchers map[string]Voucher
}

// NewStaticVoucherCatalog indexes the supplied vouchers by uppercased code.
func NewStaticVoucherCatalog(vouchers []Voucher) *StaticVoucherCatalog {
	index := make(map[string]Voucher, len(vouchers))
	for _, voucher := range vouchers {
		code := strings.ToUpper(strings.TrimSpace(voucher.Code))
		if code == "" {
			continue
		}
		voucher.Code = code
		index[code] = voucher
	}
	return &StaticVoucherCatalog{vouchers: index}
}

// FindByCode implements VoucherCatalog.
func (c *StaticVoucherCatalog) FindByCode(_ context.Context, code string) (Voucher, error) {
	voucher, ok := c.vouchers[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Voucher{}, ErrVoucherNotFound
	}
	return voucher, nil
}
