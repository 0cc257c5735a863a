package probe

import (
	"iptv-channel-prober/catalog"
)

// Status classifies the outcome of one probe attempt.
type Status string

const (
	StatusOK       Status = "ok"
	StatusTimeout  Status = "timeout"
	StatusNoData   Status = "no_data"
	StatusNoStream Status = "no_stream"
	StatusError    Status = "error"
)

// Request is one unit of work: a catalog channel plus its resolved
// media URL. Owned exclusively by the worker executing it.
type Request struct {
	Channel catalog.Channel
	URL     string
}

// MediaInfo carries the technical fields extracted from a successful
// probe. A zero value on any field means the probe could not determine
// it; the sink renders those as N/A.
type MediaInfo struct {
	Codec       string
	Width       int
	Height      int
	FrameRate   int
	BitrateKbps int
}

// ConnInfo is the optional reachability check result (HEAD request).
type ConnInfo struct {
	Status      string
	Code        int
	LatencyMS   float64
	ContentType string
}

// Result is the outcome of one probed channel. Immutable once emitted.
type Result struct {
	Channel catalog.Channel
	URL     string

	Status Status
	Detail string

	Media MediaInfo
	// BitrateMeasured marks a bitrate filled in by the fallback
	// measurement rather than the probe itself.
	BitrateMeasured bool

	Conn      *ConnInfo
	Stability *StabilityScore
}
