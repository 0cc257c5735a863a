package xtream

import (
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"iptv-channel-prober/catalog"
	"iptv-channel-prober/logger"
)

type cachedCatalog struct {
	Channels   []catalog.Channel  `json:"channels"`
	Categories []catalog.Category `json:"categories"`
}

// LoadCatalogCache returns the cached catalog when the cache file was
// written today. Catalogs churn daily on most providers, so anything
// older is treated as stale.
func LoadCatalogCache(path string) ([]catalog.Channel, []catalog.Category, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, false
	}

	now := time.Now()
	modified := info.ModTime()
	if modified.Year() != now.Year() || modified.YearDay() != now.YearDay() {
		logger.Default.Debugf("Catalog cache from %s is stale", modified.Format("2006-01-02"))
		return nil, nil, false
	}

	compressed, err := os.ReadFile(path)
	if err != nil {
		logger.Default.Warnf("Error reading catalog cache: %v", err)
		return nil, nil, false
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, nil, false
	}
	defer decoder.Close()

	raw, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		logger.Default.Warnf("Error decompressing catalog cache: %v", err)
		return nil, nil, false
	}

	var cached cachedCatalog
	if err := json.Unmarshal(raw, &cached); err != nil {
		logger.Default.Warnf("Error parsing catalog cache: %v", err)
		return nil, nil, false
	}

	logger.Default.Logf("Loaded %d channels from cache.", len(cached.Channels))
	return cached.Channels, cached.Categories, true
}

// SaveCatalogCache writes the catalog as zstd-compressed JSON via a
// temp file rename so a crash never leaves a torn cache.
func SaveCatalogCache(path string, channels []catalog.Channel, categories []catalog.Category) error {
	raw, err := json.Marshal(cachedCatalog{Channels: channels, Categories: categories})
	if err != nil {
		return err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return err
	}
	compressed := encoder.EncodeAll(raw, nil)
	encoder.Close()

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, compressed, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}

	logger.Default.Logf("Saved %d channels to cache.", len(channels))
	return nil
}
