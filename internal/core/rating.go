package core

import (
	"fmt"
	"strconv"
	"strings"
)

type ratingKind uint8

const (
	ratingAll ratingKind = iota
	ratingAtMost4
	ratingRange
)

// RatingBucket selects items by vote average.
// The zero value keeps everything.
type RatingBucket struct {
	kind  ratingKind
	floor float64
}

// Rating bucket sentinels.
var (
	RatingAll     = RatingBucket{kind: ratingAll}
	RatingAtMost4 = RatingBucket{kind: ratingAtMost4}
)

// Bucket returns the half-open bucket [floor, floor+1).
func Bucket(floor float64) RatingBucket {
	return RatingBucket{kind: ratingRange, floor: floor}
}

// Keep reports whether an item with the given vote average passes the bucket.
func (r RatingBucket) Keep(vote float64) bool {
	switch r.kind {
	case ratingAtMost4:
		return vote <= 4.0
	case ratingRange:
		return vote >= r.floor && vote < r.floor+1
	default:
		return true
	}
}

// IsAll reports whether the bucket keeps everything.
func (r RatingBucket) IsAll() bool { return r.kind == ratingAll }

func (r RatingBucket) String() string {
	switch r.kind {
	case ratingAtMost4:
		return "<=4"
	case ratingRange:
		lo := strconv.FormatFloat(r.floor, 'f', -1, 64)
		hi := strconv.FormatFloat(r.floor+1, 'f', -1, 64)
		return lo + "-" + hi
	default:
		return "all"
	}
}

// ParseRatingBucket accepts "all", "<=4", "6", "6-7" or "6~7".
func ParseRatingBucket(s string) (RatingBucket, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "all":
		return RatingAll, nil
	case "<=4", "≤4", "low":
		return RatingAtMost4, nil
	}

	lo := s
	if i := strings.IndexAny(s, "-~"); i > 0 {
		lo = s[:i]
		hi, err := strconv.ParseFloat(strings.TrimSpace(s[i+1:]), 64)
		if err != nil {
			return RatingAll, fmt.Errorf("invalid rating bucket %q", s)
		}
		floor, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil || hi != floor+1 {
			return RatingAll, fmt.Errorf("invalid rating bucket %q: range must span exactly one point", s)
		}
	}

	floor, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return RatingAll, fmt.Errorf("invalid rating bucket %q", s)
	}
	if floor < 0 || floor > 10 {
		return RatingAll, fmt.Errorf("invalid rating bucket %q: must be between 0 and 10", s)
	}
	return Bucket(floor), nil
}
