package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"marketpush/internal/domain"
	"marketpush/internal/ports"
)

const itemPrefix = "item:"

// Catalog caches item lookups in Redis in front of another catalog. Events and
// holidays pass straight through. Cache failures are logged and never surface.
type Catalog struct {
	ports.Catalog
	log *slog.Logger
	rdb client
	ttl time.Duration
}

func NewCatalog(logger *slog.Logger, inner ports.Catalog, rdb client, ttl time.Duration) *Catalog {
	return &Catalog{
		Catalog: inner,
		log:     logger.With("adapter", "item_cache"),
		rdb:     rdb,
		ttl:     ttl,
	}
}

func (c *Catalog) GetItem(ctx context.Context, itemID string) (domain.Item, bool, error) {
	raw, err := c.rdb.Get(ctx, itemPrefix+itemID).Bytes()
	switch {
	case err == nil:
		var it domain.Item
		if err := json.Unmarshal(raw, &it); err == nil {
			return it, true, nil
		}
		c.log.WarnContext(ctx, "corrupt cached item", slog.String("item_id", itemID))
	case !errors.Is(err, redis.Nil):
		c.log.WarnContext(ctx, "item cache get failed", slog.String("error", err.Error()))
	}

	it, found, err := c.Catalog.GetItem(ctx, itemID)
	if err != nil || !found {
		return it, found, err
	}
	c.store(ctx, it)
	return it, true, nil
}

func (c *Catalog) GetItems(ctx context.Context, itemIDs []string) (map[string]domain.Item, error) {
	out := make(map[string]domain.Item, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		keys[i] = itemPrefix + id
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.WarnContext(ctx, "item cache mget failed", slog.String("error", err.Error()))
		vals = nil
	}

	var misses []string
	for i, id := range itemIDs {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				var it domain.Item
				if json.Unmarshal([]byte(s), &it) == nil {
					out[id] = it
					continue
				}
			}
		}
		misses = append(misses, id)
	}
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := c.Catalog.GetItems(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, it := range loaded {
		out[id] = it
		c.store(ctx, it)
	}
	return out, nil
}

// IsItemValid answers from the cached item when there is one.
func (c *Catalog) IsItemValid(ctx context.Context, itemID string) (bool, error) {
	it, found, err := c.GetItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	return found && it.IsActive, nil
}

func (c *Catalog) store(ctx context.Context, it domain.Item) {
	raw, err := json.Marshal(it)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, itemPrefix+it.ItemID, raw, c.ttl).Err(); err != nil {
		c.log.WarnContext(ctx, "item cache set failed", slog.String("error", err.Error()))
	}
}
