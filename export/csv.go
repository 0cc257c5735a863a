package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"iptv-channel-prober/logger"
)

var csvHeader = []string{
	"stream_id", "slug", "name", "category", "status", "detail",
	"codec", "resolution", "fps", "bitrate_kbps",
	"conn_status", "latency_ms",
	"quality_score", "quality_status", "quality_details",
	"epg_entries",
}

// WriteCSV exports the collected rows. Rows arrive in whatever order
// the scheduler delivered them, which is the order callers asked for.
func WriteCSV(path string, rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to save")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.ID), row.Slug, row.Name, row.Category,
			row.Status, row.Detail,
			row.Codec, row.Resolution, row.FrameRate, row.Bitrate,
			row.ConnStatus, row.LatencyMS,
			row.Score, row.ScoreLabel, row.ScoreWhy,
			row.EPGCount,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	logger.Default.Logf("Saved %d channels to %s", len(rows), path)
	return nil
}
