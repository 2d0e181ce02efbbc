package repo

import (
	"context"
	"testing"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

func TestSalonReviewStats(t *testing.T) {
	db := newRepoDB(t, true)
	ctx := context.Background()
	owner := mustUser(t, db, "owner")
	u := mustUser(t, db, "u")
	s := mustSalon(t, db, owner.ID, "S")
	other := mustSalon(t, db, owner.ID, "Other")

	count, sum, err := SalonReviewStats(ctx, db, s.ID)
	if err != nil || count != 0 || sum != 0 {
		t.Fatalf("empty: count=%d sum=%d err=%v", count, sum, err)
	}

	for _, r := range []int{5, 4, 3} {
		if _, err := CreateReview(ctx, db, domain.Review{UserID: u.ID, SalonID: s.ID, Rating: r}); err != nil {
			t.Fatalf("CreateReview: %v", err)
		}
	}
	if _, err := CreateReview(ctx, db, domain.Review{UserID: u.ID, SalonID: other.ID, Rating: 1}); err != nil {
		t.Fatalf("CreateReview other: %v", err)
	}

	count, sum, err = SalonReviewStats(ctx, db, s.ID)
	if err != nil || count != 3 || sum != 12 {
		t.Fatalf("expected (3, 12), got (%d, %d) err=%v", count, sum, err)
	}
}

func TestSalonReviewStats_Error_NoTable(t *testing.T) {
	db := newRepoDB(t, false)
	if _, _, err := SalonReviewStats(context.Background(), db, "s"); err == nil {
		t.Fatalf("expected error without reviews table")
	}
}
