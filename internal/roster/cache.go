package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"rollcall/internal/schedule"
	id "rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

const (
	windowsKeyPrefix = "roster:windows:"
	policyKeyPrefix  = "roster:policy:"
)

// CachedStore decorates a Store with a Redis read cache for group windows
// and policies, the hot path of every eligibility check. Enrollment
// operations pass through untouched. Cache failures fall back to the
// underlying store so Redis outages degrade latency, not correctness.
type CachedStore struct {
	Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedStore wraps a Store with Redis caching.
func NewCachedStore(store Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) (*CachedStore, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{Store: store, client: client, ttl: ttl, logger: logger}, nil
}

// cachedPolicy is the wire shape for a policy cache entry. A sentinel
// Missing entry caches the not-found answer so unconfigured groups don't
// hammer the database.
type cachedPolicy struct {
	ToleranceMinutes int    `json:"tolerance_minutes"`
	Kind             string `json:"kind"`
	Missing          bool   `json:"missing,omitempty"`
}

type cachedWindow struct {
	Day   int `json:"day"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// SaveGroupConfig writes through to the store and drops the group's cache
// entries so the next read sees the new configuration.
func (c *CachedStore) SaveGroupConfig(ctx context.Context, cfg GroupConfig) error {
	if err := c.Store.SaveGroupConfig(ctx, cfg); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.windowsKey(cfg.GroupID), c.policyKey(cfg.GroupID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "roster cache invalidation failed", "group_id", cfg.GroupID, "error", err)
	}
	return nil
}

func (c *CachedStore) GroupWindows(ctx context.Context, groupID id.GroupID) ([]schedule.Window, error) {
	key := c.windowsKey(groupID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached []cachedWindow
		if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
			windows := make([]schedule.Window, 0, len(cached))
			for _, w := range cached {
				windows = append(windows, schedule.Window{
					Day:   schedule.Day(w.Day),
					Start: schedule.Minute(w.Start),
					End:   schedule.Minute(w.End),
				})
			}
			return windows, nil
		}
		// Corrupt entry: fall through to the store and rewrite it.
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "roster cache read failed", "group_id", groupID, "error", err)
	}

	windows, err := c.Store.GroupWindows(ctx, groupID)
	if err != nil {
		return nil, err
	}
	cached := make([]cachedWindow, 0, len(windows))
	for _, w := range windows {
		cached = append(cached, cachedWindow{Day: int(w.Day), Start: int(w.Start), End: int(w.End)})
	}
	c.setCache(ctx, key, cached)
	return windows, nil
}

func (c *CachedStore) GroupPolicy(ctx context.Context, groupID id.GroupID) (GroupPolicy, error) {
	key := c.policyKey(groupID)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached cachedPolicy
		if jsonErr := json.Unmarshal(payload, &cached); jsonErr == nil {
			if cached.Missing {
				return GroupPolicy{}, dErrors.Newf(dErrors.CodeNotFound, "no policy configured for group %d", groupID)
			}
			return GroupPolicy{ToleranceMinutes: cached.ToleranceMinutes, Kind: PolicyKind(cached.Kind)}, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "roster cache read failed", "group_id", groupID, "error", err)
	}

	policy, err := c.Store.GroupPolicy(ctx, groupID)
	if err != nil {
		if isNotFound(err) {
			c.setCache(ctx, key, cachedPolicy{Missing: true})
		}
		return GroupPolicy{}, err
	}
	c.setCache(ctx, key, cachedPolicy{ToleranceMinutes: policy.ToleranceMinutes, Kind: string(policy.Kind)})
	return policy, nil
}

func (c *CachedStore) setCache(ctx context.Context, key string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "roster cache write failed", "key", key, "error", err)
	}
}

func (c *CachedStore) windowsKey(groupID id.GroupID) string {
	return fmt.Sprintf("%s%d", windowsKeyPrefix, groupID.Int64())
}

func (c *CachedStore) policyKey(groupID id.GroupID) string {
	return fmt.Sprintf("%s%d", policyKeyPrefix, groupID.Int64())
}
