package probe

import (
	"bufio"
	"bytes"
	"context"
	"strconv"
	"strings"
	"time"

	"iptv-channel-prober/config"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils"
)

// ffmpeg emits a -progress block roughly every half second; the stall
// accounting below uses that as the sample interval.
const progressTick = 500 * time.Millisecond

// Playback speed under this during a sample counts as a stall.
const stallSpeed = 0.75

// QualityMonitor plays the stream into a null sink for a fixed window
// and collects playback metrics from ffmpeg's machine-readable progress
// output. Like the primary probe, it runs inside the caller's slot.
type QualityMonitor struct {
	settings *config.ProbeSettings
	bin      string
	runCmd   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewQualityMonitor(settings *config.ProbeSettings) *QualityMonitor {
	return &QualityMonitor{
		settings: settings,
		bin:      "ffmpeg",
		runCmd:   runCommand,
	}
}

func (qm *QualityMonitor) args(url string) []string {
	windowSecs := strconv.FormatFloat(qm.settings.QualityWindow.Seconds(), 'f', -1, 64)

	return []string{
		"-hide_banner",
		"-nostats",
		"-loglevel", "error",
		"-user_agent", utils.GetEnv("USER_AGENT"),
		"-i", url,
		"-t", windowSecs,
		"-f", "null",
		"-progress", "pipe:1",
		"-",
	}
}

// Measure observes the stream for the configured window. The second
// return is false when the monitor produced no progress data at all;
// zero metrics from a stream that was never observed must not be
// mistaken for a perfectly stable one.
func (qm *QualityMonitor) Measure(ctx context.Context, url string) (StabilityMetrics, bool) {
	monitorCtx, cancel := context.WithTimeout(ctx, qm.settings.QualityWindow+qm.settings.ProbeTimeout)
	defer cancel()

	output, err := qm.runCmd(monitorCtx, qm.bin, qm.args(url)...)
	if err != nil && len(output) == 0 {
		logger.Default.Debugf("Quality monitoring produced no progress data: %v", err)
		return StabilityMetrics{}, false
	}

	return parseProgress(output), true
}

// parseProgress folds ffmpeg -progress key=value blocks into metrics.
// Frame and drop counters are cumulative, so the last seen value wins;
// speed is averaged across samples. A transition into stalled speed
// counts one rebuffer event, and every stalled sample adds one tick to
// the rebuffer duration.
func parseProgress(output []byte) StabilityMetrics {
	var metrics StabilityMetrics

	var speedSum float64
	var speedSamples int
	stalled := false

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}

		switch key {
		case "frame":
			if frames, err := strconv.Atoi(value); err == nil {
				metrics.FramesProcessed = frames
			}
		case "drop_frames":
			if drops, err := strconv.Atoi(value); err == nil {
				metrics.DroppedFrames = drops
			}
		case "speed":
			speed, err := strconv.ParseFloat(strings.TrimSuffix(value, "x"), 64)
			if err != nil {
				continue
			}
			speedSum += speed
			speedSamples++

			if speed < stallSpeed {
				if !stalled {
					metrics.RebufferEvents++
					stalled = true
				}
				metrics.RebufferDuration += progressTick.Seconds()
			} else {
				stalled = false
			}
		}
	}

	if speedSamples > 0 {
		metrics.PlaybackSpeed = speedSum / float64(speedSamples)
	}

	return metrics
}
