package entity

import "github.com/shopspring/decimal"

// RatingStats is the raw per-master aggregate read from the reviews table.
type RatingStats struct {
	MasterID    uint
	RatingSum   int64
	ReviewCount int64
}

// Rating is the derived review aggregate. Average is nil for an unrated master
// so clients can tell "no reviews" apart from a score.
type Rating struct {
	Average *float64 `json:"average_rating"`
	Count   int64    `json:"review_count"`
}

// NewRating computes the mean of count ratings summing to sum, rounded to two places.
func NewRating(sum, count int64) Rating {
	if count <= 0 {
		return Rating{}
	}

	avg, _ := decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2).Float64()
	return Rating{Average: &avg, Count: count}
}

// RatingFromStats returns the rating for stats, or the unrated value when stats is nil.
func RatingFromStats(stats *RatingStats) Rating {
	if stats == nil {
		return Rating{}
	}
	return NewRating(stats.RatingSum, stats.ReviewCount)
}
