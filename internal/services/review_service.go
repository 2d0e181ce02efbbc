// Package services – ReviewService
//
// This file implements ReviewService, which owns reviews and keeps the
// salon rating aggregate consistent with them. Every create, delete and
// rating-changing update runs in one transaction together with the
// aggregate recomputation (see RatingAggregator).
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

const maxCommentRunes = 2000

// ReviewPatch carries the fields a review author may change. Nil fields
// are left untouched.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

// ReviewService coordinates review persistence and rating aggregation.
type ReviewService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Ratings serializes review mutations per salon and recomputes aggregates.
	Ratings *RatingAggregator
}

// NewReviewService constructs a ReviewService with its own aggregator.
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db, Ratings: &RatingAggregator{}}
}

// Create stores a review by the caller on salonID and refreshes the salon
// aggregate in the same transaction.
//
// Errors: Validation for a rating outside 1..5 or an oversized comment;
// ErrSalonNotFound when the salon does not exist.
func (s *ReviewService) Create(ctx context.Context, caller Caller, salonID string, rating int, comment string) (*ReviewView, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("salon.id", salonID),
			attribute.String("user.id", caller.ID),
			attribute.Int("review.rating", rating),
		),
	)
	defer span.End()

	if err := validateRating(rating); err != nil {
		return nil, err
	}
	comment = strings.TrimSpace(comment)
	if err := validateComment(comment); err != nil {
		return nil, err
	}

	unlock := s.Ratings.Lock(salonID)
	defer unlock()

	var out *ReviewView
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.LockSalon(ctx, tx, salonID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrSalonNotFound
			}
			return err
		}
		r, err := repo.CreateReview(ctx, tx, domain.Review{
			UserID:  caller.ID,
			SalonID: salonID,
			Rating:  rating,
			Comment: comment,
		})
		if err != nil {
			if errors.Is(err, repo.ErrForeignKey) {
				return ErrUserNotFound
			}
			return err
		}
		if _, _, err := s.Ratings.Recompute(ctx, tx, salonID, "create"); err != nil {
			return err
		}
		author, err := repo.GetUser(ctx, tx, caller.ID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		out = &ReviewView{Review: *r, User: userSummary(author, false)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update merges patch into a review written by the caller. A changed
// rating refreshes the salon aggregate in the same transaction.
//
// Errors: Validation for bad values; ErrReviewNotFound; ErrNotReviewAuthor.
func (s *ReviewService) Update(ctx context.Context, caller Caller, reviewID string, patch ReviewPatch) (*domain.Review, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("review.id", reviewID),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	fields := map[string]any{}
	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
		fields["rating"] = *patch.Rating
	}
	if patch.Comment != nil {
		c := strings.TrimSpace(*patch.Comment)
		if err := validateComment(c); err != nil {
			return nil, err
		}
		fields["comment"] = c
	}

	current, err := s.load(ctx, s.DB, reviewID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, ReviewResource(current), ActionEditReview); err != nil {
		return nil, err
	}

	unlock := s.Ratings.Lock(current.SalonID)
	defer unlock()

	var out *domain.Review
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.LockSalon(ctx, tx, current.SalonID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		before, err := s.load(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		r, err := repo.UpdateReview(ctx, tx, reviewID, fields)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrReviewNotFound
			}
			return err
		}
		if r.Rating != before.Rating {
			if _, _, err := s.Ratings.Recompute(ctx, tx, r.SalonID, "update"); err != nil {
				return err
			}
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a review written by the caller and refreshes the salon
// aggregate. It reports false, without error, when the review does not exist.
//
// Errors: ErrNotReviewAuthor when the caller did not write the review.
func (s *ReviewService) Delete(ctx context.Context, caller Caller, reviewID string) (bool, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("review.id", reviewID),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	current, err := s.load(ctx, s.DB, reviewID)
	if errors.Is(err, ErrReviewNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := Authorize(caller, ReviewResource(current), ActionEditReview); err != nil {
		return false, err
	}

	unlock := s.Ratings.Lock(current.SalonID)
	defer unlock()

	var deleted bool
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.LockSalon(ctx, tx, current.SalonID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
		ok, err := repo.DeleteReview(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if ok {
			if _, _, err := s.Ratings.Recompute(ctx, tx, current.SalonID, "delete"); err != nil {
				return err
			}
		}
		deleted = ok
		return nil
	})
	return deleted, err
}

// Get fetches a single review.
func (s *ReviewService) Get(ctx context.Context, reviewID string) (*domain.Review, error) {
	return s.load(ctx, s.DB, reviewID)
}

// ListForSalon returns a salon's reviews, newest first, each with its author.
//
// Errors: ErrSalonNotFound.
func (s *ReviewService) ListForSalon(ctx context.Context, salonID string) ([]ReviewView, error) {
	tr := otel.Tracer("services/ReviewService")
	ctx, span := tr.Start(ctx, "ListForSalon",
		trace.WithAttributes(attribute.String("salon.id", salonID)),
	)
	defer span.End()

	if _, err := repo.GetSalon(ctx, s.DB, salonID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	reviews, err := repo.GetReviewsBySalonID(ctx, s.DB, salonID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	users, err := repo.GetUsersByIDs(ctx, s.DB, uniq(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	out := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewView{Review: r, User: userSummary(byID[r.UserID], false)})
	}
	return out, nil
}

// ListForUser returns the reviews written by userID.
func (s *ReviewService) ListForUser(ctx context.Context, userID string) ([]domain.Review, error) {
	return repo.GetReviewsByUserID(ctx, s.DB, userID)
}

func (s *ReviewService) load(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	r, err := repo.GetReview(ctx, db, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return r, nil
}

func validateRating(r int) error {
	if r < 1 || r > 5 {
		return validationError("rating must be between 1 and 5, got %d", r)
	}
	return nil
}

func validateComment(c string) error {
	if utf8.RuneCountInString(c) > maxCommentRunes {
		return validationError("comment must be at most %d characters", maxCommentRunes)
	}
	return nil
}

// uniq returns ids without duplicates or empty strings, keeping first occurrences.
func uniq(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
