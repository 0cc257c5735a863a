package export

import (
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"iptv-channel-prober/probe"
)

// Row is one rendered result line. Every submitted channel produces
// exactly one row; failures show up in the Status column, never as a
// missing row.
type Row struct {
	ID         int
	Slug       string
	Name       string
	Category   string
	Status     string
	Detail     string
	Codec      string
	Resolution string
	FrameRate  string
	Bitrate    string
	ConnStatus string
	LatencyMS  string
	Score      string
	ScoreLabel string
	ScoreWhy   string
	EPGCount   string
}

const unknown = "N/A"

// NewRow flattens a probe result for rendering. Unknown media fields
// become "N/A" here, keeping the zero-value convention out of sinks.
func NewRow(res probe.Result, categoryName string, epgCount int, hasEPG bool) Row {
	row := Row{
		ID:         res.Channel.ID,
		Slug:       slug.Make(res.Channel.Name),
		Name:       res.Channel.Name,
		Category:   categoryName,
		Status:     string(res.Status),
		Detail:     res.Detail,
		Codec:      unknown,
		Resolution: unknown,
		FrameRate:  unknown,
		Bitrate:    unknown,
		EPGCount:   unknown,
	}

	if res.Status == probe.StatusOK {
		if res.Media.Codec != "" {
			row.Codec = res.Media.Codec
		}
		if res.Media.Width > 0 && res.Media.Height > 0 {
			row.Resolution = strconv.Itoa(res.Media.Width) + "x" + strconv.Itoa(res.Media.Height)
		}
		if res.Media.FrameRate > 0 {
			row.FrameRate = strconv.Itoa(res.Media.FrameRate)
		}
		if res.Media.BitrateKbps > 0 {
			row.Bitrate = strconv.Itoa(res.Media.BitrateKbps)
			if res.BitrateMeasured {
				row.Bitrate += "*"
			}
		}
	}

	if res.Conn != nil {
		row.ConnStatus = res.Conn.Status
		if res.Conn.Code > 0 {
			row.ConnStatus += " (" + strconv.Itoa(res.Conn.Code) + ")"
		}
		row.LatencyMS = strconv.FormatFloat(res.Conn.LatencyMS, 'f', 1, 64)
	}

	if res.Stability != nil {
		row.Score = strconv.FormatFloat(res.Stability.Score, 'f', 1, 64)
		row.ScoreLabel = string(res.Stability.Status)
		if len(res.Stability.Reasons) > 0 {
			row.ScoreWhy = strings.Join(res.Stability.Reasons, "; ")
		} else {
			row.ScoreWhy = "No issues"
		}
	}

	if hasEPG {
		row.EPGCount = strconv.Itoa(epgCount)
	}

	return row
}
