package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"iptv-channel-prober/config"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils"
)

// Codec names are truncated for display; some providers report long
// profile strings.
const maxCodecLen = 12

// Executor performs the primary bounded measurement of one URL.
type Executor interface {
	Probe(ctx context.Context, url string) Result
}

// FFProbeExecutor shells out to ffprobe and parses its JSON output.
// The command runner is swappable so tests can feed canned output.
type FFProbeExecutor struct {
	settings *config.ProbeSettings
	bin      string
	runCmd   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewFFProbeExecutor(settings *config.ProbeSettings) *FFProbeExecutor {
	return &FFProbeExecutor{
		settings: settings,
		bin:      "ffprobe",
		runCmd:   runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

type ffprobeStream struct {
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	BitRate      string `json:"bit_rate"`
}

type ffprobeFormat struct {
	BitRate string `json:"bit_rate"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

func (e *FFProbeExecutor) args(url string) []string {
	s := e.settings

	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		"-select_streams", "v:0",
		"-analyzeduration", strconv.FormatInt(s.AnalyzeWindow.Microseconds(), 10),
		"-probesize", strconv.Itoa(s.ProbeBufferBytes),
		"-rw_timeout", strconv.FormatInt(s.IOTimeout.Microseconds(), 10),
		"-user_agent", utils.GetEnv("USER_AGENT"),
	}
	if s.Reconnect {
		args = append(args, "-reconnect", "1", "-reconnect_streamed", "1")
	}
	return append(args, url)
}

// Probe runs ffprobe under the overall probe timeout and classifies the
// outcome. It must be called with the slot already held: this is the
// connection the provider counts.
func (e *FFProbeExecutor) Probe(ctx context.Context, url string) Result {
	probeCtx, cancel := context.WithTimeout(ctx, e.settings.ProbeTimeout)
	defer cancel()

	output, err := e.runCmd(probeCtx, e.bin, e.args(url)...)

	if probeCtx.Err() == context.DeadlineExceeded {
		return Result{Status: StatusTimeout, Detail: "probe exceeded time budget"}
	}
	if probeCtx.Err() != nil {
		return Result{Status: StatusError, Detail: "probe cancelled"}
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return Result{Status: StatusError, Detail: fmt.Sprintf("probe launch failed: %v", err)}
	}

	if len(strings.TrimSpace(string(output))) == 0 {
		return Result{Status: StatusNoData, Detail: "probe produced no output"}
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		logger.Default.Debugf("Malformed probe output: %v", err)
		return Result{Status: StatusError, Detail: fmt.Sprintf("malformed probe output: %v", err)}
	}

	if len(parsed.Streams) == 0 {
		return Result{Status: StatusNoStream, Detail: "no media streams found"}
	}

	stream := parsed.Streams[0]
	return Result{
		Status: StatusOK,
		Media: MediaInfo{
			Codec:       truncateCodec(stream.CodecName),
			Width:       stream.Width,
			Height:      stream.Height,
			FrameRate:   normalizeFrameRate(stream.AvgFrameRate, stream.RFrameRate),
			BitrateKbps: normalizeBitrate(stream.BitRate, parsed.Format.BitRate),
		},
	}
}

func truncateCodec(codec string) string {
	if len(codec) > maxCodecLen {
		return codec[:maxCodecLen]
	}
	return codec
}

// normalizeFrameRate turns ffprobe's rational "num/den" notation into a
// rounded integer. A zero denominator means unknown, not an error.
func normalizeFrameRate(rates ...string) int {
	for _, rational := range rates {
		num, den, ok := strings.Cut(rational, "/")
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			continue
		}
		fps := int(n/d + 0.5)
		if fps > 0 {
			return fps
		}
	}
	return 0
}

// normalizeBitrate prefers the stream-level value over the container
// fallback. ffprobe reports bits per second; anything non-positive is
// unknown.
func normalizeBitrate(streamRate, formatRate string) int {
	for _, raw := range []string{streamRate, formatRate} {
		bps, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || bps <= 0 {
			continue
		}
		return int(bps / 1000)
	}
	return 0
}
