package chart

import (
	"math"
	"strings"
	"time"

	"ai-teacher/internal/domain"
)

// Levels is the fixed bucket order of the difficulty distribution.
var Levels = []string{"Beginner", "Intermediate", "Advanced"}

// Bucket is one bar of the difficulty distribution.
type Bucket struct {
	Label     string  `json:"label"`
	Count     int     `json:"count"`
	Percent   int     `json:"percent"`
	FillRatio float64 `json:"fill_ratio"`
	IsCurrent bool    `json:"is_current"`
}

// Distribution tallies history by difficulty and flags the bucket equal to current.
func Distribution(history []domain.PerformanceRecord, current string) []Bucket {
	counts := make(map[string]int, len(Levels))
	for _, h := range history {
		counts[classify(h)]++
	}

	total, maxCount := 0, 1
	for _, l := range Levels {
		total += counts[l]
		maxCount = max(maxCount, counts[l])
	}

	buckets := make([]Bucket, 0, len(Levels))
	for _, l := range Levels {
		b := Bucket{
			Label:     l,
			Count:     counts[l],
			FillRatio: float64(counts[l]) / float64(maxCount),
			IsCurrent: l == current,
		}
		if total > 0 {
			b.Percent = int(math.Round(float64(counts[l]) / float64(total) * 100))
		}
		buckets = append(buckets, b)
	}
	return buckets
}

// classify uses the stored difficulty; records without one fall back to their score.
func classify(r domain.PerformanceRecord) string {
	if strings.TrimSpace(r.Difficulty) != "" {
		return domain.NormalizeDifficultyLabel(r.Difficulty)
	}
	switch {
	case r.Score >= 80:
		return "Advanced"
	case r.Score >= 60:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// ShortDate formats like "Jan 2".
func ShortDate(t time.Time) string {
	return t.Format("Jan 2")
}
