package export

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// ConsoleRenderer writes result rows as they arrive. All writes go
// through one mutex-guarded writer so concurrent callers never produce
// interleaved partial lines.
type ConsoleRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
	count int
}

func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{
		out:   os.Stdout,
		color: os.Getenv("NO_COLOR") == "",
	}
}

func (cr *ConsoleRenderer) Header() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	fmt.Fprintf(cr.out, "%-7s %-30s %-18s %-10s %-12s %-11s %-5s %-10s %s\n",
		"ID", "NAME", "CATEGORY", "STATUS", "CODEC", "RESOLUTION", "FPS", "KBPS", "SCORE")
}

func (cr *ConsoleRenderer) Render(row Row) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	status := row.Status
	if cr.color {
		status = cr.colorize(row.Status)
	}

	score := ""
	if row.Score != "" {
		score = row.Score + " (" + row.ScoreLabel + ")"
	}

	fmt.Fprintf(cr.out, "%-7d %-30s %-18s %-10s %-12s %-11s %-5s %-10s %s\n",
		row.ID, clip(row.Name, 30), clip(row.Category, 18), status,
		row.Codec, row.Resolution, row.FrameRate, row.Bitrate, score)
	cr.count++
}

func (cr *ConsoleRenderer) Summary() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	fmt.Fprintf(cr.out, "\nTotal channels processed: %d\n", cr.count)
}

func (cr *ConsoleRenderer) colorize(status string) string {
	switch status {
	case "ok":
		return colorGreen + status + colorReset
	case "timeout", "no_data", "no_stream":
		return colorYellow + status + colorReset
	default:
		return colorRed + status + colorReset
	}
}

// clip truncates on rune boundaries; channel names are frequently
// non-ASCII and a byte slice could split a multibyte rune.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
