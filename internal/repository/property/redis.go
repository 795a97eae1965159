package propertyrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/rueidis"

	"github.com/parcelworks/dealfilter/internal/domain"
	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// Compile-time check: RedisSource implements Source.
var _ Source = (*RedisSource)(nil)

const redisKeyPrefix = "dealfilter:property:"

// RedisConfig holds connection parameters for a Redis source.
type RedisConfig struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

// RedisSource stores each record as a JSON value under a prefixed key.
type RedisSource struct {
	client rueidis.Client
}

// NewRedisSource connects to Redis via rueidis.
func NewRedisSource(cfg RedisConfig) (*RedisSource, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &RedisSource{client: client}, nil
}

// Ping checks connectivity.
func (s *RedisSource) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the source responds or timeout expires.
func (s *RedisSource) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for property source: %w", ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Get returns the record with the given id.
func (s *RedisSource) Get(ctx context.Context, id string) (*property.Record, error) {
	cmd := s.client.B().Get().Key(redisKeyPrefix + id).Build()
	data, err := s.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, fmt.Errorf("property %q: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get property %q: %w", id, err)
	}
	return decodeRecord(data)
}

// List returns up to limit records starting at offset, ordered by id.
// Keys are collected with SCAN and sorted before pagination so that the
// ordering matches the SQLite driver.
func (s *RedisSource) List(ctx context.Context, offset, limit int) ([]*property.Record, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	if offset < 0 {
		offset = 0
	}
	if offset >= len(keys) {
		return nil, nil
	}
	keys = keys[offset:]
	if limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}

	cmds := make(rueidis.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, s.client.B().Get().Key(key).Build())
	}

	out := make([]*property.Record, 0, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		data, err := res.AsBytes()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue // deleted between SCAN and GET
			}
			return nil, fmt.Errorf("get property %q: %w", keys[i], err)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *RedisSource) Count(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Put stores or replaces a record.
func (s *RedisSource) Put(ctx context.Context, rec *property.Record) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("record id is required: %w", domain.ErrInvalidRequest)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode property %q: %w", rec.ID, err)
	}
	cmd := s.client.B().Set().Key(redisKeyPrefix + rec.ID).Value(string(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("store property %q: %w", rec.ID, err)
	}
	return nil
}

// PutMany stores a batch of records via a pipelined write.
func (s *RedisSource) PutMany(ctx context.Context, recs []*property.Record) error {
	cmds := make(rueidis.Commands, 0, len(recs))
	for _, rec := range recs {
		if rec == nil || rec.ID == "" {
			return fmt.Errorf("record id is required: %w", domain.ErrInvalidRequest)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode property %q: %w", rec.ID, err)
		}
		cmds = append(cmds, s.client.B().Set().Key(redisKeyPrefix+rec.ID).Value(string(data)).Build())
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("store properties: %w", err)
		}
	}
	return nil
}

// Delete removes a record by id.
func (s *RedisSource) Delete(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(redisKeyPrefix + id).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("delete property %q: %w", id, err)
	}
	return nil
}

// Close shuts down the client.
func (s *RedisSource) Close() error {
	s.client.Close()
	return nil
}

func (s *RedisSource) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(redisKeyPrefix + "*").Count(100).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan properties: %w", err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}
