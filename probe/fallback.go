package probe

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/valyala/bytebufferpool"

	"iptv-channel-prober/config"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils"
)

const fallbackReadChunk = 32 * 1024

// FallbackMeasurer estimates bitrate by reading the raw stream for a
// bounded window. It only runs when the primary probe succeeded without
// a bitrate, and it reuses the caller's held slot: the GET below is
// another provider-visible connection.
type FallbackMeasurer struct {
	settings *config.ProbeSettings
	client   *http.Client
}

func NewFallbackMeasurer(settings *config.ProbeSettings) *FallbackMeasurer {
	return &FallbackMeasurer{
		settings: settings,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				ResponseHeaderTimeout: 10 * time.Second,
			},
		},
	}
}

// Measure returns the observed kbps, or 0 when it could not be
// determined. Transport failures are not errors here: the primary probe
// already proved the channel reachable.
func (fm *FallbackMeasurer) Measure(ctx context.Context, url string) int {
	// Let the provider see the probe connection close before opening
	// the measurement one.
	if !sleepCtx(ctx, fm.settings.FallbackGap) {
		return 0
	}

	readCtx, cancel := context.WithTimeout(ctx, fm.settings.FallbackSample+10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(readCtx, http.MethodGet, url, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("User-Agent", utils.GetEnv("USER_AGENT"))

	resp, err := fm.client.Do(req)
	if err != nil {
		logger.Default.Debugf("Fallback measurement failed: %v", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logger.Default.Debugf("Fallback measurement got status %d", resp.StatusCode)
		return 0
	}

	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)
	if cap(bb.B) < fallbackReadChunk {
		bb.B = make([]byte, fallbackReadChunk)
	}
	chunk := bb.B[:fallbackReadChunk]

	var totalBytes int64
	start := time.Now()
	deadline := start.Add(fm.settings.FallbackSample)

	for time.Now().Before(deadline) && totalBytes < fm.settings.FallbackMaxBytes {
		n, err := resp.Body.Read(chunk)
		totalBytes += int64(n)
		if err != nil {
			if err != io.EOF {
				logger.Default.Debugf("Fallback read ended early: %v", err)
			}
			break
		}
	}

	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 || totalBytes <= 0 {
		return 0
	}

	kbps := float64(totalBytes*8) / 1000 / elapsed
	if kbps <= 0 {
		return 0
	}
	return int(kbps)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
