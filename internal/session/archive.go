package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const archiveTTL = 24 * time.Hour

// Archive keeps session snapshots in redis so recently finished games
// stay queryable after the registry lets go of them.
type Archive struct {
	rdb *redis.Client
}

func NewArchive(rdb *redis.Client) *Archive {
	return &Archive{rdb: rdb}
}

// OpenArchive dials redis from a redis:// URL and pings it.
func OpenArchive(ctx context.Context, redisURL string) (*Archive, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session archive")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewArchive(rdb), nil
}

func (a *Archive) Close() error {
	if a == nil || a.rdb == nil {
		return nil
	}
	return a.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}

func archiveKey(id string) string { return "arena:game:" + strings.TrimSpace(id) }

func (a *Archive) Save(ctx context.Context, snap *Snapshot) error {
	if a == nil || a.rdb == nil || snap == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return a.rdb.Set(ctx, archiveKey(snap.ID), raw, archiveTTL).Err()
}

// Load returns nil without error when the id is unknown or expired.
func (a *Archive) Load(ctx context.Context, id string) (*Snapshot, error) {
	if a == nil || a.rdb == nil {
		return nil, nil
	}
	raw, err := a.rdb.Get(ctx, archiveKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
