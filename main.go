package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"iptv-channel-prober/catalog"
	"iptv-channel-prober/config"
	"iptv-channel-prober/epg"
	"iptv-channel-prober/export"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/probe"
	"iptv-channel-prober/xtream"
)

type cliOptions struct {
	server    string
	user      string
	password  string
	category  string
	noCache   bool
	cacheFile string
	checkConn bool
	quality   bool
	check     bool
	withEPG   bool
	savePath  string
}

func parseFlags() *cliOptions {
	opts := &cliOptions{}

	flag.StringVar(&opts.server, "server", "", "Xtream server address")
	flag.StringVar(&opts.user, "user", "", "Xtream username")
	flag.StringVar(&opts.password, "pw", "", "Xtream password")
	flag.StringVar(&opts.category, "category", "", "Filter by category name")
	flag.BoolVar(&opts.noCache, "nocache", false, "Don't use cached channel data")
	flag.StringVar(&opts.cacheFile, "cachefile", config.GetCatalogCachePath(), "Cache file path")
	flag.BoolVar(&opts.checkConn, "conn", false, "Check connection status")
	flag.BoolVar(&opts.quality, "quality", false, "Check stream quality")
	flag.BoolVar(&opts.check, "check", false, "Check stream stability")
	flag.BoolVar(&opts.withEPG, "epg", false, "Count EPG entries per channel")
	flag.StringVar(&opts.savePath, "save", "", "Save results to CSV file")
	flag.Parse()

	return opts
}

func main() {
	opts := parseFlags()

	if opts.server == "" || opts.user == "" || opts.password == "" {
		logger.Default.Fatal("Missing required flags: -server, -user and -pw must all be set.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()[:8]
	logger.Default.Logf("Starting channel probe run %s", runID)

	settings := config.NewDefaultProbeSettings()
	client := xtream.NewClient(opts.server, opts.user, opts.password)

	// The counter outlives individual passes so scheduled re-probes hit
	// the TTL memo instead of refetching every channel's listings.
	epgCounter := epg.NewCounter(client, settings.EPGConcurrency)

	var runMutex sync.Mutex
	runOnce := func(ctx context.Context) {
		// One analysis pass at a time; overlapping passes would
		// double-count against the provider's session cap.
		runMutex.Lock()
		defer runMutex.Unlock()
		if err := analyzeChannels(ctx, client, epgCounter, settings, opts); err != nil {
			logger.Default.Errorf("Probe run failed: %v", err)
		}
	}

	cronSched := os.Getenv("PROBE_CRON")
	if len(strings.TrimSpace(cronSched)) == 0 {
		runOnce(ctx)
		return
	}

	// cron already runs each job in its own goroutine, and Stop's
	// context waits for running jobs, so shutdown never cuts a pass
	// off mid-write.
	c := cron.New()
	if _, err := c.AddFunc(cronSched, func() { runOnce(ctx) }); err != nil {
		logger.Default.Fatalf("Error initializing scheduled runs: %v", err)
	}
	c.Start()
	logger.Default.Logf("PROBE_CRON enabled (%s). Running initial pass.", cronSched)

	runOnce(ctx)

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Default.Log("Shutting down.")
}

func analyzeChannels(ctx context.Context, client *xtream.Client, epgCounter *epg.Counter, settings *config.ProbeSettings, opts *cliOptions) error {
	store, err := loadCatalog(ctx, client, opts)
	if err != nil {
		return err
	}

	channels := store.Channels()
	if opts.category != "" {
		channels = store.FilterByCategoryName(opts.category)
		logger.Default.Logf("Found %d channels in category '%s'", len(channels), opts.category)
	}
	if len(channels) == 0 {
		logger.Default.Warn("No channels match the criteria.")
		return nil
	}

	reqs := make([]probe.Request, 0, len(channels))
	for _, ch := range channels {
		reqs = append(reqs, probe.Request{
			Channel: ch,
			URL:     client.StreamURL(ch.ID),
		})
	}

	// EPG metadata counting never opens a media session, so it runs
	// fully concurrently with probing under its own cap.
	var epgCounts = make(map[int]int)
	var epgWg sync.WaitGroup
	if opts.withEPG {
		epgWg.Add(1)
		go func() {
			defer epgWg.Done()
			epgCounter.CountAll(ctx, channels).ForEach(func(id int, count int) bool {
				epgCounts[id] = count
				return true
			})
		}()
	}

	slots := probe.NewSlotManager(settings.MaxConcurrency, settings.GraceHold)
	prober := probe.NewProber(settings, probe.Options{
		CheckConn:    opts.checkConn,
		CheckQuality: opts.quality || opts.check,
	})
	scheduler := probe.NewScheduler(settings, slots, prober)

	logger.Default.Logf("Probing %d channels (cap %d, interval %s, grace %s)",
		len(reqs), settings.MaxConcurrency, settings.LaunchInterval, settings.GraceHold)

	renderer := export.NewConsoleRenderer()
	renderer.Header()

	var results []probe.Result
	for res := range scheduler.Run(ctx, reqs) {
		renderer.Render(export.NewRow(res, store.CategoryName(res.Channel.CategoryID), 0, false))
		results = append(results, res)
	}
	renderer.Summary()

	epgWg.Wait()

	if ctx.Err() != nil {
		logger.Default.Warnf("Run interrupted; %d of %d channels completed.", len(results), len(reqs))
	}

	if opts.savePath != "" {
		rows := make([]export.Row, 0, len(results))
		for _, res := range results {
			count, ok := epgCounts[res.Channel.ID]
			rows = append(rows, export.NewRow(res, store.CategoryName(res.Channel.CategoryID), count, ok))
		}
		if err := export.WriteCSV(opts.savePath, rows); err != nil {
			return err
		}
	}

	return nil
}

func loadCatalog(ctx context.Context, client *xtream.Client, opts *cliOptions) (*catalog.Store, error) {
	if !opts.noCache {
		if channels, categories, ok := xtream.LoadCatalogCache(opts.cacheFile); ok {
			return catalog.NewStore(channels, categories)
		}
	}

	logger.Default.Logf("Fetching channels from %s...", opts.server)
	channels, err := client.GetLiveStreams(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := client.GetLiveCategories(ctx)
	if err != nil {
		logger.Default.Warnf("Error fetching categories: %v", err)
		categories = nil
	}

	if !opts.noCache {
		if err := xtream.SaveCatalogCache(opts.cacheFile, channels, categories); err != nil {
			logger.Default.Warnf("Error saving catalog cache: %v", err)
		}
	}

	return catalog.NewStore(channels, categories)
}
