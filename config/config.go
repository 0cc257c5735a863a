package config

import (
	"os"
	"path/filepath"
	"time"

	"iptv-channel-prober/utils"
)

type Config struct {
	DataPath string
}

var globalConfig = &Config{
	DataPath: defaultDataPath(),
}

func defaultDataPath() string {
	if path := os.Getenv("DATA_PATH"); path != "" {
		return path
	}
	return "."
}

func GetConfig() *Config {
	return globalConfig
}

func SetConfig(c *Config) {
	globalConfig = c
}

func GetCatalogCachePath() string {
	return filepath.Join(globalConfig.DataPath, "channel_cache.json.zst")
}

// ProbeSettings carries every tuning knob the scheduler, executor and
// fallback measurer consume. Values come from the environment with the
// same clamping rules across the board: worker counts never drop below
// one and durations never go negative.
type ProbeSettings struct {
	// MaxConcurrency is both the slot cap and the worker pool size.
	// The provider counts connections, not goroutines, so a pool
	// larger than the slot cap would only queue on Acquire.
	MaxConcurrency int
	GraceHold      time.Duration
	LaunchInterval time.Duration
	LaunchJitter   time.Duration

	ProbeTimeout     time.Duration
	AnalyzeWindow    time.Duration
	ProbeBufferBytes int
	IOTimeout        time.Duration
	Reconnect        bool

	FallbackEnabled  bool
	FallbackSample   time.Duration
	FallbackMaxBytes int64
	FallbackGap      time.Duration

	QualityWindow time.Duration

	PreserveOrder  bool
	EPGConcurrency int
}

func NewDefaultProbeSettings() *ProbeSettings {
	settings := &ProbeSettings{
		MaxConcurrency:   utils.EnvInt("MAX_CONCURRENCY", 2),
		GraceHold:        secondsEnv("GRACE_HOLD_SECONDS", 4),
		LaunchInterval:   secondsEnv("PROBE_INTERVAL_SECONDS", 1),
		LaunchJitter:     time.Duration(utils.EnvInt("PROBE_JITTER_MS", 500)) * time.Millisecond,
		ProbeTimeout:     secondsEnv("PROBE_TIMEOUT_SECONDS", 15),
		AnalyzeWindow:    time.Duration(utils.EnvInt("PROBE_ANALYZE_MS", 3000)) * time.Millisecond,
		ProbeBufferBytes: utils.EnvInt("PROBE_BUFFER_BYTES", 1024*1024),
		IOTimeout:        time.Duration(utils.EnvInt("PROBE_IO_TIMEOUT_MS", 5000)) * time.Millisecond,
		Reconnect:        utils.EnvBool("PROBE_RECONNECT", false),
		FallbackEnabled:  utils.EnvBool("FALLBACK_ENABLED", true),
		FallbackSample:   secondsEnv("FALLBACK_SAMPLE_SECONDS", 5),
		FallbackMaxBytes: int64(utils.EnvInt("FALLBACK_MAX_BYTES", 4*1024*1024)),
		FallbackGap:      secondsEnv("FALLBACK_GAP_SECONDS", 1),
		QualityWindow:    secondsEnv("QUALITY_WINDOW_SECONDS", 20),
		PreserveOrder:    utils.EnvBool("PRESERVE_ORDER", true),
		EPGConcurrency:   utils.EnvInt("EPG_CONCURRENCY", 8),
	}

	settings.clamp()
	return settings
}

func (s *ProbeSettings) clamp() {
	if s.MaxConcurrency < 1 {
		s.MaxConcurrency = 1
	}
	if s.EPGConcurrency < 1 {
		s.EPGConcurrency = 1
	}
	if s.GraceHold < 0 {
		s.GraceHold = 0
	}
	if s.LaunchInterval < 0 {
		s.LaunchInterval = 0
	}
	if s.LaunchJitter < 0 {
		s.LaunchJitter = 0
	}
	if s.FallbackGap < 0 {
		s.FallbackGap = 0
	}
	if s.ProbeBufferBytes < 0 {
		s.ProbeBufferBytes = 0
	}
	if s.FallbackMaxBytes < 0 {
		s.FallbackMaxBytes = 0
	}
}

func secondsEnv(env string, def float64) time.Duration {
	val := utils.EnvFloat(env, def)
	if val < 0 {
		val = 0
	}
	return time.Duration(val * float64(time.Second))
}
