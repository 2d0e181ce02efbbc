package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", ErrSalonNotFound)

	if !errors.Is(wrapped, ErrSalonNotFound) {
		t.Fatalf("expected exact cause to match")
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected kind sentinel to match")
	}
	if errors.Is(wrapped, ErrServiceNotFound) {
		t.Fatalf("different cause of same kind must not match")
	}
	if errors.Is(wrapped, ErrConflict) {
		t.Fatalf("different kind must not match")
	}
	if errors.Is(validationError("x"), ErrForbidden) || !errors.Is(validationError("x"), ErrValidation) {
		t.Fatalf("dynamic validation error kind mismatch")
	}
}

func TestKindOf_AndResourceChanged(t *testing.T) {
	tests := []struct {
		err     error
		kind    Kind
		changed bool
	}{
		{ErrBookingNotFound, KindNotFound, true},
		{ErrAlreadyFavorite, KindConflict, true},
		{ErrCustomerMayOnlyCancel, KindForbidden, false},
		{invalidTransition("completed", "cancelled"), KindInvalidTransition, false},
		{validationError("bad"), KindValidation, false},
	}
	for _, tc := range tests {
		k, ok := KindOf(fmt.Errorf("wrap: %w", tc.err))
		if !ok || k != tc.kind {
			t.Fatalf("KindOf(%v) = (%q, %v), want %q", tc.err, k, ok, tc.kind)
		}
		if k.ResourceChanged() != tc.changed {
			t.Fatalf("%q.ResourceChanged() = %v, want %v", k, !tc.changed, tc.changed)
		}
	}
	if _, ok := KindOf(errors.New("db down")); ok {
		t.Fatalf("plain errors have no kind")
	}
}

func TestError_Messages(t *testing.T) {
	if got := invalidTransition("completed", "pending").Error(); got != "cannot change booking status from completed to pending" {
		t.Fatalf("unexpected message %q", got)
	}
	if ErrNotFound.Error() != "not_found" {
		t.Fatalf("kind sentinel should print its kind, got %q", ErrNotFound.Error())
	}
}
