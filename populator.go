package main

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/Financial-Times/go-logger"
)

type populator struct {
	cluster clusterService
	metrics *probeMetrics
}

func (p *populator) populate(ctx context.Context, target populationTarget) error {
	for _, cacheName := range target.caches {
		cache, err := p.resolve(cacheName, target.view)
		if err != nil {
			return err
		}

		if err := populateCache(ctx, cache, target.count); err != nil {
			return fmt.Errorf("cannot populate cache %s: %w", cacheName, err)
		}

		p.metrics.recordPopulated(cacheName, target.count)

		size, err := cache.Size(ctx)
		if err != nil {
			log.WithError(err).Warnf("Cannot read the size of cache %s", cacheName)
			continue
		}
		p.metrics.recordCacheSize(cacheName, size)
		log.Debugf("Populated cache %s with %d entries, size is now %d", cacheName, target.count, size)
	}

	return nil
}

func (p *populator) resolve(cacheName string, view bool) (namedCache, error) {
	if view {
		return p.cluster.getView(cacheName)
	}
	return p.cluster.getCache(cacheName)
}

// populateCache clears the cache and writes keys 0..count-1 with values "value-N".
// The batch is flushed on every entry when count itself is a multiple of
// populateFlushThreshold, otherwise once at the end.
func populateCache(ctx context.Context, cache namedCache, count int) error {
	if err := cache.Clear(ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	batch := make(map[int]string)
	for i := 0; i < count; i++ {
		batch[i] = "value-" + strconv.Itoa(i)
		if count%populateFlushThreshold == 0 {
			if err := cache.PutAll(ctx, batch); err != nil {
				return fmt.Errorf("putAll failed: %w", err)
			}
			batch = make(map[int]string)
		}
	}

	if len(batch) != 0 {
		if err := cache.PutAll(ctx, batch); err != nil {
			return fmt.Errorf("putAll failed: %w", err)
		}
	}

	return nil
}
