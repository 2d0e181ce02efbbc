package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

func TestCreateService_UnknownSalon(t *testing.T) {
	db := newRepoDB(t, true)
	_, err := CreateService(context.Background(), db, domain.Service{SalonID: "ghost", Name: "x", Price: 1})
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestServices_ListUpdateDelete(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()
	owner := mustUser(t, db, "owner")
	s := mustSalon(t, db, owner.ID, "S")
	other := mustSalon(t, db, owner.ID, "Other")

	svc := mustService(t, db, s.ID, 200, intPtr(180))
	mustService(t, db, s.ID, 50, nil)

	list, err := GetServicesBySalonID(ctx, db, s.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("GetServicesBySalonID: len=%d err=%v", len(list), err)
	}
	empty, err := GetServicesBySalonID(ctx, db, other.ID)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %v err=%v", empty, err)
	}

	// Clearing the discount and moving salons are distinct: salon_id is fixed.
	got, err := UpdateService(ctx, db, svc.ID, map[string]any{
		"discounted_price": nil,
		"salon_id":         other.ID,
	})
	if err != nil {
		t.Fatalf("UpdateService: %v", err)
	}
	if got.DiscountedPrice != nil || got.SalonID != s.ID || got.Price != 200 || got.EffectivePrice() != 200 {
		t.Fatalf("unexpected service after update: %+v", got)
	}

	ok, err := DeleteService(ctx, db, svc.ID)
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v", ok, err)
	}
	ok, err = DeleteService(ctx, db, svc.ID)
	if err != nil || ok {
		t.Fatalf("second delete: expected false, got ok=%v err=%v", ok, err)
	}
	if _, err := GetService(ctx, db, svc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteService_ReferencedByBooking(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()
	owner := mustUser(t, db, "owner")
	cust := mustUser(t, db, "cust")
	s := mustSalon(t, db, owner.ID, "S")
	svc := mustService(t, db, s.ID, 100, nil)
	mustBooking(t, db, cust.ID, svc)

	ok, err := DeleteService(ctx, db, svc.ID)
	if ok || !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected (false, ErrForeignKey), got (%v, %v)", ok, err)
	}
	if _, err := GetService(ctx, db, svc.ID); err != nil {
		t.Fatalf("service should survive: %v", err)
	}
}

func TestGetServicesByIDs(t *testing.T) {
	db := newRepoDB(t, true)
	owner := mustUser(t, db, "owner")
	s := mustSalon(t, db, owner.ID, "S")
	a := mustService(t, db, s.ID, 10, nil)

	out, err := GetServicesByIDs(context.Background(), db, []string{a.ID, "ghost"})
	if err != nil || len(out) != 1 || out[0].ID != a.ID {
		t.Fatalf("GetServicesByIDs: %v err=%v", out, err)
	}
}
