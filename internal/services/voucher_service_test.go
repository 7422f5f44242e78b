package services

import (
	"context"
	"errors"
	"testing"

	domain "github.com/tokosetara/api/internal/domain"
	"github.com/tokosetara/api/internal/repositories/memory"
)

func newVoucherServiceForTest(t *testing.T, vouchers []Voucher) (VoucherService, *memory.SessionRepository) {
	t.Helper()
	repo := memory.NewSessionRepository()
	svc, err := NewVoucherService(VoucherServiceDeps{
		Repository: repo,
		Catalog:    NewStaticVoucherCatalog(vouchers),
		Clock:      fixedClock,
	})
	if err != nil {
		t.Fatalf("NewVoucherService error: %v", err)
	}
	return svc, repo
}

func seedSession(t *testing.T, repo *memory.SessionRepository, key string) {
	t.Helper()
	err := repo.Save(context.Background(), domain.CheckoutSession{
		Key:   key,
		Items: []domain.LineItem{{ProductID: "p1", Name: "Tote", UnitPrice: 149000, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestVoucherApplyNormalisesCode(t *testing.T) {
	svc, repo := newVoucherServiceForTest(t, []Voucher{
		{ID: "v1", Code: "hemat10", Kind: domain.VoucherPercentage, PercentageAmount: 10},
	})
	seedSession(t, repo, "s1")

	session, err := svc.Apply(context.Background(), "s1", " hemat10 ")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if session.Voucher == nil || session.Voucher.Code != "HEMAT10" {
		t.Fatalf("expected uppercased voucher applied, got %+v", session.Voucher)
	}
}

func TestVoucherApplyReplacesPrevious(t *testing.T) {
	svc, repo := newVoucherServiceForTest(t, []Voucher{
		{ID: "v1", Code: "HEMAT10", Kind: domain.VoucherPercentage, PercentageAmount: 10},
		{ID: "v2", Code: "POTONG20K", Kind: domain.VoucherFixed, FixedAmount: 20000},
	})
	seedSession(t, repo, "s1")
	ctx := context.Background()

	if _, err := svc.Apply(ctx, "s1", "HEMAT10"); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	session, err := svc.Apply(ctx, "s1", "POTONG20K")
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	// One voucher per session: the second replaces the first.
	if session.Voucher == nil || session.Voucher.ID != "v2" {
		t.Fatalf("expected replacement voucher, got %+v", session.Voucher)
	}
}

func TestVoucherApplyUnknownCode(t *testing.T) {
	svc, repo := newVoucherServiceForTest(t, nil)
	seedSession(t, repo, "s1")

	if _, err := svc.Apply(context.Background(), "s1", "NOPE"); !errors.Is(err, ErrVoucherNotFound) {
		t.Fatalf("expected ErrVoucherNotFound, got %v", err)
	}
}

func TestVoucherRemoveIsIdempotent(t *testing.T) {
	svc, repo := newVoucherServiceForTest(t, []Voucher{
		{ID: "v1", Code: "HEMAT10", Kind: domain.VoucherPercentage, PercentageAmount: 10},
	})
	seedSession(t, repo, "s1")
	ctx := context.Background()

	if _, err := svc.Apply(ctx, "s1", "HEMAT10"); err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	session, err := svc.Remove(ctx, "s1")
	if err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if session.Voucher != nil {
		t.Fatalf("expected voucher removed, got %+v", session.Voucher)
	}

	// Removing again is a no-op.
	if _, err := svc.Remove(ctx, "s1"); err != nil {
		t.Fatalf("second Remove error: %v", err)
	}
}
