// Package services – RecommendationService
//
// RecommendationService runs the replenishment heuristic for one user. Each
// call is a fresh, side-effect-free computation over an immutable snapshot
// of the record store: build per-item histories, gate them through the
// candidacy thresholds, score, rank, and cap. The reference date is the
// latest purchase date across the whole dataset so results stay reproducible
// against a fixed dataset; Now is the fallback seam for empty stores and for
// tests.
package services

import (
	"context"
	"time"

	"github.com/tbourn/go-purchase-insights/internal/analysis"
	"github.com/tbourn/go-purchase-insights/internal/store"
)

// RecommendationService produces ranked "buy again" suggestions.
type RecommendationService struct {
	Store       RecordSource
	Recommender analysis.Recommender

	// DefaultTopN caps the list when the caller does not ask for a size.
	DefaultTopN int
	// Now supplies the fallback reference date for users with no records.
	// Defaults to time.Now when nil.
	Now func() time.Time
}

// NewRecommendationService wires the service with the given scoring policy.
func NewRecommendationService(src RecordSource, rec analysis.Recommender) *RecommendationService {
	return &RecommendationService{
		Store:       src,
		Recommender: rec,
		DefaultTopN: 10,
	}
}

// Recommend returns up to topN ranked recommendations for userID. topN 0
// applies the service default; a negative value is a validation error.
// An unknown user yields an empty list, not an error.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, topN int) ([]analysis.Recommendation, error) {
	if topN < 0 {
		return nil, ErrInvalidTopN
	}
	if topN == 0 {
		topN = s.DefaultTopN
	}

	records := s.Store.Query(userID, store.Filter{})
	if len(records) == 0 {
		return []analysis.Recommendation{}, nil
	}

	// Analysis reference date: latest date across the dataset, falling back
	// to the clock when the store cannot say.
	ref := s.Store.LatestDate()
	if ref.IsZero() {
		ref = s.now()
	}
	return s.Recommender.Recommend(records, ref, topN), nil
}

func (s *RecommendationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
