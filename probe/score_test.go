package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreZeroIssues(t *testing.T) {
	result := Score(StabilityMetrics{
		FramesProcessed: 1000,
		DroppedFrames:   0,
		PlaybackSpeed:   1.0,
	})

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, ScoreExcellent, result.Status)
	assert.Empty(t, result.Reasons)
	assert.Equal(t, 0.0, result.Penalty)
}

func TestScoreDropsOnly(t *testing.T) {
	// 10% drops saturates the 35 point cap.
	result := Score(StabilityMetrics{
		FramesProcessed: 1000,
		DroppedFrames:   100,
		PlaybackSpeed:   1.0,
	})

	assert.Equal(t, 65.0, result.Score)
	assert.Equal(t, ScoreFair, result.Status)
	assert.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "Dropped frames")
}

func TestScoreBuffering(t *testing.T) {
	result := Score(StabilityMetrics{PlaybackSpeed: 0.5})

	assert.Equal(t, 65.0, result.Score)
	assert.Equal(t, ScoreFair, result.Status)
	assert.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "Buffering")
}

func TestScoreSkipAhead(t *testing.T) {
	result := Score(StabilityMetrics{PlaybackSpeed: 1.5})

	assert.Equal(t, 80.0, result.Score)
	assert.Equal(t, ScoreGood, result.Status)
	assert.Contains(t, result.Reasons[0], "Speed fluctuation")
}

func TestScoreRebuffering(t *testing.T) {
	result := Score(StabilityMetrics{
		PlaybackSpeed:    1.0,
		RebufferEvents:   3,
		RebufferDuration: 4,
	})

	assert.Equal(t, 78.0, result.Score)
	assert.Equal(t, ScoreGood, result.Status)
	assert.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "Rebuffering (x3)")
}

func TestScoreNoFramesSkipsDropStage(t *testing.T) {
	// frames_processed == 0 must not divide, penalize or add a reason.
	result := Score(StabilityMetrics{
		FramesProcessed: 0,
		DroppedFrames:   50,
		PlaybackSpeed:   1.0,
	})

	assert.Equal(t, 100.0, result.Score)
	assert.Empty(t, result.Reasons)
}

func TestScoreStageCaps(t *testing.T) {
	// Worst case on every stage: 35 + 35 + 30 = 100, floor at zero.
	result := Score(StabilityMetrics{
		FramesProcessed:  100,
		DroppedFrames:    100,
		PlaybackSpeed:    0.1,
		RebufferEvents:   10,
		RebufferDuration: 60,
	})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, ScoreUnstable, result.Status)
	assert.Equal(t, 100.0, result.Penalty)
	assert.Len(t, result.Reasons, 3)
}

func TestScoreReasonOrder(t *testing.T) {
	result := Score(StabilityMetrics{
		FramesProcessed:  1000,
		DroppedFrames:    10,
		PlaybackSpeed:    0.5,
		RebufferEvents:   1,
		RebufferDuration: 1,
	})

	assert.Len(t, result.Reasons, 3)
	assert.Contains(t, result.Reasons[0], "Dropped frames")
	assert.Contains(t, result.Reasons[1], "Buffering")
	assert.Contains(t, result.Reasons[2], "Rebuffering")
}

func TestScoreMonotonicInDrops(t *testing.T) {
	prev := 101.0
	for drops := 0; drops <= 1000; drops += 50 {
		result := Score(StabilityMetrics{
			FramesProcessed: 1000,
			DroppedFrames:   drops,
			PlaybackSpeed:   1.0,
		})
		if result.Score > prev {
			t.Fatalf("score increased from %.1f to %.1f at drops=%d", prev, result.Score, drops)
		}
		prev = result.Score
	}
}

func TestScoreBuckets(t *testing.T) {
	cases := []struct {
		score  float64
		status ScoreStatus
	}{
		{95, ScoreExcellent},
		{90, ScoreExcellent},
		{89.9, ScoreGood},
		{75, ScoreGood},
		{74.9, ScoreFair},
		{50, ScoreFair},
		{49.9, ScorePoor},
		{30, ScorePoor},
		{29.9, ScoreUnstable},
		{0, ScoreUnstable},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, bucket(tc.score), "score %.1f", tc.score)
	}
}
