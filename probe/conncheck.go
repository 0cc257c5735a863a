package probe

import (
	"context"
	"net/http"
	"time"

	"iptv-channel-prober/utils"
)

// CheckConnection issues a HEAD request against the stream URL and
// captures latency and response metadata. It never downloads the
// stream, but the provider still sees the hit, so callers run it inside
// the held slot.
func CheckConnection(ctx context.Context, url string, timeout time.Duration) ConnInfo {
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := utils.CustomHttpRequest(checkCtx, http.MethodHead, url)
	latency := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		return ConnInfo{Status: "error"}
	}
	defer resp.Body.Close()

	status := "connected"
	if resp.StatusCode >= 400 {
		status = "failed"
	}

	return ConnInfo{
		Status:      status,
		Code:        resp.StatusCode,
		LatencyMS:   round1(latency),
		ContentType: resp.Header.Get("Content-Type"),
	}
}
