package chart

import (
	"testing"

	"ai-teacher/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistribution(t *testing.T) {
	history := []domain.PerformanceRecord{
		{Difficulty: "Beginner"},
		{Difficulty: "Beginner"},
		{Difficulty: "Advanced"},
	}

	buckets := Distribution(history, "Advanced")
	require.Len(t, buckets, 3)

	assert.Equal(t, Bucket{Label: "Beginner", Count: 2, Percent: 67, FillRatio: 1.0}, buckets[0])
	assert.Equal(t, Bucket{Label: "Intermediate", Count: 0, Percent: 0, FillRatio: 0}, buckets[1])
	assert.Equal(t, Bucket{Label: "Advanced", Count: 1, Percent: 33, FillRatio: 0.5, IsCurrent: true}, buckets[2])
}

func TestDistribution_Normalization(t *testing.T) {
	history := []domain.PerformanceRecord{
		{Difficulty: "intermediate"},
		{Difficulty: "ADVANCED"},
		{Difficulty: "expert"},
		{Score: 85},
		{Score: 65},
		{Score: 10},
	}

	buckets := Distribution(history, "Beginner")
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, 2, buckets[1].Count)
	assert.Equal(t, 2, buckets[2].Count)
	assert.True(t, buckets[0].IsCurrent)
}

func TestDistribution_Empty(t *testing.T) {
	for _, b := range Distribution(nil, "Beginner") {
		assert.Equal(t, 0, b.Count)
		assert.Equal(t, 0, b.Percent)
		assert.Equal(t, 0.0, b.FillRatio)
	}
}
