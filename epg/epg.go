package epg

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"iptv-channel-prober/catalog"
	"iptv-channel-prober/logger"
	"iptv-channel-prober/utils/safemap"
)

// Source is the piece of the provider API the counter needs.
type Source interface {
	GetShortEPGCount(ctx context.Context, streamID int) (int, error)
}

// Counter fetches per-channel EPG listing counts. This fan-out talks to
// the provider API, not the streams, so it runs under its own lighter
// concurrency cap and never touches probe slots.
type Counter struct {
	source Source
	limit  int
	memo   *gocache.Cache
}

func NewCounter(source Source, limit int) *Counter {
	if limit < 1 {
		limit = 1
	}
	return &Counter{
		source: source,
		limit:  limit,
		memo:   gocache.New(time.Hour, 10*time.Minute),
	}
}

// CountAll fetches EPG counts for every channel concurrently and
// returns them keyed by stream id. Channels whose fetch failed are
// simply absent; EPG metadata is best-effort.
func (c *Counter) CountAll(ctx context.Context, channels []catalog.Channel) *safemap.Map[int, int] {
	counts := safemap.New[int, int]()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.limit)

	for _, ch := range channels {
		ch := ch
		group.Go(func() error {
			key := keyFor(ch.ID)
			if cached, found := c.memo.Get(key); found {
				counts.Set(ch.ID, cached.(int))
				return nil
			}

			count, err := c.source.GetShortEPGCount(groupCtx, ch.ID)
			if err != nil {
				logger.Default.Debugf("EPG fetch failed for %s: %v", ch.Name, err)
				return nil
			}

			c.memo.SetDefault(key, count)
			counts.Set(ch.ID, count)
			return nil
		})
	}

	_ = group.Wait()
	return counts
}

func keyFor(streamID int) string {
	return "epg:" + strconv.Itoa(streamID)
}
