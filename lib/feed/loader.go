package feed

import (
	"context"

	"feedcore/lib/metrics"
)

// BatchCache is the cache surface a Loader probes before touching the primary
// store. Implementations never return errors: anything that goes wrong reads
// as fewer entries in the batch result.
type BatchCache[V any] interface {
	GetBatch(ctx context.Context, ids []string) map[string]V
	SetBatch(ctx context.Context, values map[string]V)
}

// FetchFunc resolves a set of IDs against the primary store in a single
// query. IDs with no backing record are simply left out of the map.
type FetchFunc[V any] func(ctx context.Context, ids []string) (map[string]V, error)

// Loader resolves N requested entities with zero duplicate fetches and at
// most one primary-store query, cache-first. A nil cache degrades to
// store-only resolution with identical results.
type Loader[V any] struct {
	entity string
	cache  BatchCache[V]
	fetch  FetchFunc[V]
	m      *metrics.Metrics
}

func NewLoader[V any](entity string, cache BatchCache[V], fetch FetchFunc[V], m *metrics.Metrics) *Loader[V] {
	return &Loader[V]{entity: entity, cache: cache, fetch: fetch, m: m}
}

// Resolve returns a map with at most one entry per requested ID. Requested
// IDs that exist nowhere are absent from the map; that is a normal outcome,
// not an error. The only error path is a failed primary-store query.
func (l *Loader[V]) Resolve(ctx context.Context, ids []string) (map[string]V, error) {
	ids = Dedupe(ids)
	out := make(map[string]V, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	if l.cache != nil {
		for id, v := range l.cache.GetBatch(ctx, ids) {
			out[id] = v
		}
	}

	missing := ids[:0:0]
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := l.fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	l.m.BatchLoaded(l.entity, len(missing))
	for id, v := range fetched {
		out[id] = v
	}
	if l.cache != nil && len(fetched) > 0 {
		// Best-effort backfill; the cache layer swallows its own failures.
		l.cache.SetBatch(ctx, fetched)
	}
	return out, nil
}

// Dedupe returns the unique IDs in first-seen order, dropping empties.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
