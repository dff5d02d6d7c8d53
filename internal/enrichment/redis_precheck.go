package enrichment

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chomnr/brute-go/internal/model"
)

// RedisPrecheck is the optional latency-only pre-check layer in front of
// the database row check. A miss or error here simply falls through to the
// database; it never fails a Lookup.
type RedisPrecheck struct {
	client *redis.Client
}

// NewRedisPrecheck dials addr. Connection failures surface only when a
// later command is attempted, matching redis.Client's lazy-connect
// behavior.
func NewRedisPrecheck(addr string) *RedisPrecheck {
	return &RedisPrecheck{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisPrecheck) key(ip string) string { return "enrichment:" + ip }

// Get returns a cached Enrichment for ip, if present and decodable.
func (r *RedisPrecheck) Get(ctx context.Context, ip string) (model.Enrichment, bool) {
	raw, err := r.client.Get(ctx, r.key(ip)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Debug("enrichment: redis precheck get failed", "ip", ip, "error", err)
		}
		return model.Enrichment{}, false
	}
	var enr model.Enrichment
	if err := json.Unmarshal(raw, &enr); err != nil {
		slog.Warn("enrichment: redis precheck payload corrupt", "ip", ip, "error", err)
		return model.Enrichment{}, false
	}
	return enr, true
}

// Set stores enr for ip with the given expiry. Failures are logged and
// otherwise ignored — the database remains authoritative.
func (r *RedisPrecheck) Set(ctx context.Context, ip string, enr model.Enrichment, ttl time.Duration) {
	raw, err := json.Marshal(enr)
	if err != nil {
		slog.Warn("enrichment: redis precheck encode failed", "ip", ip, "error", err)
		return
	}
	if err := r.client.Set(ctx, r.key(ip), raw, ttl).Err(); err != nil {
		slog.Debug("enrichment: redis precheck set failed", "ip", ip, "error", err)
	}
}
