package probe

import (
	"context"

	"iptv-channel-prober/config"
	"iptv-channel-prober/logger"
)

// Options selects which measurements each unit performs beyond the
// primary probe.
type Options struct {
	CheckConn    bool
	CheckQuality bool
}

// Prober is the per-unit pipeline the scheduler runs inside a held
// slot: connection check, primary probe, fallback bitrate measurement,
// quality monitoring. Per-unit failures land in the result status and
// never abort sibling units.
type Prober struct {
	settings *config.ProbeSettings
	exec     Executor
	fallback *FallbackMeasurer
	monitor  *QualityMonitor
	opts     Options
}

func NewProber(settings *config.ProbeSettings, opts Options) *Prober {
	return &Prober{
		settings: settings,
		exec:     NewFFProbeExecutor(settings),
		fallback: NewFallbackMeasurer(settings),
		monitor:  NewQualityMonitor(settings),
		opts:     opts,
	}
}

func (p *Prober) Run(ctx context.Context, req Request) Result {
	res := p.exec.Probe(ctx, req.URL)
	res.Channel = req.Channel
	res.URL = req.URL

	logger.Default.Debugf("Probed %s: %s", req.Channel.Name, res.Status)

	if p.opts.CheckConn {
		conn := CheckConnection(ctx, req.URL, p.settings.ProbeTimeout)
		res.Conn = &conn
	}

	// Escalate to an active read only when the primary probe succeeded
	// but left the bitrate unknown. The measurement waits out the
	// fallback gap itself so the two connections never overlap.
	if res.Status == StatusOK && res.Media.BitrateKbps == 0 && p.settings.FallbackEnabled {
		if kbps := p.fallback.Measure(ctx, req.URL); kbps > 0 {
			res.Media.BitrateKbps = kbps
			res.BitrateMeasured = true
			logger.Default.Debugf("Fallback measured %d kbps for %s", kbps, req.Channel.Name)
		}
	}

	if p.opts.CheckQuality && res.Status == StatusOK {
		if metrics, ok := p.monitor.Measure(ctx, req.URL); ok {
			score := Score(metrics)
			res.Stability = &score
		} else {
			logger.Default.Warnf("Quality monitoring failed for %s; no stability verdict", req.Channel.Name)
		}
	}

	return res
}
