// Package services – rating aggregator
//
// A salon's rating and review_count are derived from its reviews. Every
// review mutation recomputes both from the reviews table in the same
// transaction as the mutation, so readers never see a review without its
// effect on the aggregate.
//
// Writers of the same salon are serialized twice: an in-process lock keyed
// by salon ID, and a row lock on the salon (SELECT ... FOR UPDATE) on
// databases that have one, which covers several server processes.
package services

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// RatingAggregator recomputes salon aggregates and serializes review
// mutations per salon. The zero value is ready to use.
type RatingAggregator struct {
	mu    sync.Mutex
	locks map[string]*salonLock
}

type salonLock struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until the caller holds the mutation lock for salonID and
// returns the release function. It must be taken before opening the
// transaction that mutates reviews.
func (a *RatingAggregator) Lock(salonID string) (unlock func()) {
	a.mu.Lock()
	if a.locks == nil {
		a.locks = make(map[string]*salonLock)
	}
	l := a.locks[salonID]
	if l == nil {
		l = &salonLock{}
		a.locks[salonID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, salonID)
		}
		a.mu.Unlock()
	}
}

// Recompute reads COUNT and SUM of the salon's reviews through tx and
// stores the rounded mean and the count on the salon. It returns the
// persisted values.
func (a *RatingAggregator) Recompute(ctx context.Context, tx *gorm.DB, salonID, trigger string) (rating float64, count int64, err error) {
	count, sum, err := repo.SalonReviewStats(ctx, tx, salonID)
	if err != nil {
		return 0, 0, err
	}
	rating = domain.RoundRating(sum, count)
	if err := repo.SetSalonRating(ctx, tx, salonID, rating, count); err != nil {
		return 0, 0, err
	}
	ratingRecomputes.WithLabelValues(trigger).Inc()
	return rating, count, nil
}
