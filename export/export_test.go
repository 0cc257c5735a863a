package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"iptv-channel-prober/catalog"
	"iptv-channel-prober/probe"
)

func okResult() probe.Result {
	return probe.Result{
		Channel: catalog.Channel{ID: 7, Name: "News One", CategoryID: "5"},
		URL:     "http://host/live/u/p/7.ts",
		Status:  probe.StatusOK,
		Media: probe.MediaInfo{
			Codec:       "h264",
			Width:       1920,
			Height:      1080,
			FrameRate:   25,
			BitrateKbps: 4500,
		},
	}
}

func TestNewRowMediaFields(t *testing.T) {
	row := NewRow(okResult(), "News", 0, false)

	if row.Resolution != "1920x1080" || row.Codec != "h264" || row.FrameRate != "25" {
		t.Errorf("unexpected media columns: %+v", row)
	}
	if row.Bitrate != "4500" {
		t.Errorf("expected bitrate 4500, got %q", row.Bitrate)
	}
	if row.Slug != "news-one" {
		t.Errorf("expected slug news-one, got %q", row.Slug)
	}
	if row.EPGCount != "N/A" {
		t.Errorf("expected N/A EPG count, got %q", row.EPGCount)
	}
}

func TestNewRowUnknownFields(t *testing.T) {
	res := okResult()
	res.Media = probe.MediaInfo{Codec: "h264"}

	row := NewRow(res, "News", 0, false)
	if row.Resolution != "N/A" || row.FrameRate != "N/A" || row.Bitrate != "N/A" {
		t.Errorf("unknown fields not rendered as N/A: %+v", row)
	}
}

func TestNewRowFailureHidesMedia(t *testing.T) {
	res := okResult()
	res.Status = probe.StatusTimeout

	row := NewRow(res, "News", 0, false)
	if row.Codec != "N/A" || row.Bitrate != "N/A" {
		t.Errorf("failed probe should not expose media fields: %+v", row)
	}
	if row.Status != "timeout" {
		t.Errorf("expected timeout status, got %q", row.Status)
	}
}

func TestNewRowMeasuredBitrateMarked(t *testing.T) {
	res := okResult()
	res.Media.BitrateKbps = 3200
	res.BitrateMeasured = true

	row := NewRow(res, "News", 0, false)
	if row.Bitrate != "3200*" {
		t.Errorf("measured bitrate not marked: %q", row.Bitrate)
	}
}

func TestNewRowStability(t *testing.T) {
	res := okResult()
	res.Stability = &probe.StabilityScore{
		Score:   65.0,
		Status:  probe.ScoreFair,
		Penalty: 35.0,
		Reasons: []string{"Dropped frames (10.00%): -35.0"},
	}

	row := NewRow(res, "News", 0, false)
	if row.Score != "65.0" || row.ScoreLabel != "fair" {
		t.Errorf("unexpected score columns: %+v", row)
	}
	if row.ScoreWhy != "Dropped frames (10.00%): -35.0" {
		t.Errorf("unexpected reasons column: %q", row.ScoreWhy)
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	rows := []Row{
		NewRow(okResult(), "News", 12, true),
	}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("expected header plus one row, got %d records", len(records))
	}
	if len(records[0]) != len(csvHeader) {
		t.Errorf("header has %d columns, want %d", len(records[0]), len(csvHeader))
	}
	if records[1][0] != "7" || records[1][2] != "News One" || records[1][15] != "12" {
		t.Errorf("unexpected row contents: %v", records[1])
	}
}

func TestClipRuneBoundaries(t *testing.T) {
	name := "Телеканал Первый Национальный ХД"
	clipped := clip(name, 10)

	if !utf8.ValidString(clipped) {
		t.Errorf("clipping split a rune: %q", clipped)
	}
	if got := len([]rune(clipped)); got != 10 {
		t.Errorf("expected 10 runes after clipping, got %d (%q)", got, clipped)
	}

	if clip("News", 30) != "News" {
		t.Error("short name should pass through unchanged")
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	if err := WriteCSV(filepath.Join(t.TempDir(), "empty.csv"), nil); err == nil {
		t.Error("expected error for empty row set")
	}
}
