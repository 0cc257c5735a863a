package probe

import (
	"fmt"
	"math"
)

// StabilityMetrics are the raw playback measurements from one
// quality-monitoring window. Zero values are valid measurements.
type StabilityMetrics struct {
	FramesProcessed  int
	DroppedFrames    int
	PlaybackSpeed    float64
	RebufferEvents   int
	RebufferDuration float64
}

type ScoreStatus string

const (
	ScoreExcellent ScoreStatus = "excellent"
	ScoreGood      ScoreStatus = "good"
	ScoreFair      ScoreStatus = "fair"
	ScorePoor      ScoreStatus = "poor"
	ScoreUnstable  ScoreStatus = "unstable"
)

// StabilityScore is the derived 0-100 quality verdict. Reasons appear
// in evaluation order (drops, speed, rebuffering) and only for stages
// that actually contributed.
type StabilityScore struct {
	Score   float64
	Status  ScoreStatus
	Penalty float64
	Reasons []string
}

// Score converts metrics into a deterministic stability verdict. Each
// penalty stage is capped on its own; the summed penalty is not.
func Score(metrics StabilityMetrics) StabilityScore {
	penalty := 0.0
	var reasons []string

	// Dropped frames, 35 points max. 10% drops hits the cap.
	if metrics.FramesProcessed > 0 {
		dropPct := float64(metrics.DroppedFrames) / float64(metrics.FramesProcessed) * 100
		framePenalty := math.Min(35, dropPct*3.5)
		penalty += framePenalty
		if framePenalty > 0 {
			reasons = append(reasons, fmt.Sprintf("Dropped frames (%.2f%%): -%.1f", dropPct, framePenalty))
		}
	}

	// Playback speed. Below realtime means buffering; far above means
	// the player is skipping ahead to catch up.
	speed := metrics.PlaybackSpeed
	if speed < 0.97 {
		speedPenalty := math.Min(35, (1-speed)*70)
		penalty += speedPenalty
		reasons = append(reasons, fmt.Sprintf("Buffering (speed %.2fx): -%.1f", speed, speedPenalty))
	} else if speed > 1.2 {
		speedPenalty := math.Min(20, (speed-1)*40)
		penalty += speedPenalty
		reasons = append(reasons, fmt.Sprintf("Speed fluctuation (%.2fx): -%.1f", speed, speedPenalty))
	}

	// Rebuffering, 30 points max.
	if metrics.RebufferEvents > 0 {
		rebufferPenalty := math.Min(30, float64(metrics.RebufferEvents)*6+metrics.RebufferDuration)
		penalty += rebufferPenalty
		reasons = append(reasons, fmt.Sprintf("Rebuffering (x%d): -%.1f", metrics.RebufferEvents, rebufferPenalty))
	}

	finalScore := math.Max(0, 100-penalty)

	return StabilityScore{
		Score:   round1(finalScore),
		Status:  bucket(finalScore),
		Penalty: round1(penalty),
		Reasons: reasons,
	}
}

func bucket(score float64) ScoreStatus {
	switch {
	case score >= 90:
		return ScoreExcellent
	case score >= 75:
		return ScoreGood
	case score >= 50:
		return ScoreFair
	case score >= 30:
		return ScorePoor
	default:
		return ScoreUnstable
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
