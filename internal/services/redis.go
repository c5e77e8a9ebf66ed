package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/holocron-engine/pkg/alignment"
	"github.com/jwebster45206/holocron-engine/pkg/faction"
	"github.com/jwebster45206/holocron-engine/pkg/quest"
)

// questHistoryCap bounds the per-character quest list in Redis.
const questHistoryCap = 50

// RedisStorage implements the Storage interface using Redis.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance.
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// GetClient returns the underlying Redis client for direct operations
func (r *RedisStorage) GetClient() *redis.Client {
	return r.client
}

// Faction operations

func (r *RedisStorage) SaveFaction(ctx context.Context, f *faction.Faction) error {
	data, err := json.Marshal(f)
	if err != nil {
		r.logger.Error("Failed to marshal faction", "key", f.Key, "error", err)
		return fmt.Errorf("failed to marshal faction: %w", err)
	}

	key := "faction:" + f.Key
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save faction", "key", f.Key, "error", err)
		return fmt.Errorf("failed to save faction: %w", err)
	}
	// Index membership so LoadFactions avoids SCAN.
	if err := r.client.SAdd(ctx, "factions", f.Key).Err(); err != nil {
		return fmt.Errorf("failed to index faction: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadFactions(ctx context.Context) ([]*faction.Faction, error) {
	keys, err := r.client.SMembers(ctx, "factions").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list factions: %w", err)
	}

	factions := make([]*faction.Faction, 0, len(keys))
	for _, k := range keys {
		data, err := r.client.Get(ctx, "faction:"+k).Result()
		if err != nil {
			if err == redis.Nil {
				r.logger.Warn("Indexed faction missing", "key", k)
				continue
			}
			return nil, fmt.Errorf("failed to load faction %s: %w", k, err)
		}

		var f faction.Faction
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal faction %s: %w", k, err)
		}
		factions = append(factions, &f)
	}
	return factions, nil
}

// Alignment operations

func (r *RedisStorage) SaveAlignment(ctx context.Context, rec *alignment.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Error("Failed to marshal alignment record", "character", rec.Character, "error", err)
		return fmt.Errorf("failed to marshal alignment record: %w", err)
	}

	key := "alignment:" + rec.Character
	if err := r.client.Set(ctx, key, string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save alignment record", "character", rec.Character, "error", err)
		return fmt.Errorf("failed to save alignment record: %w", err)
	}
	if err := r.client.SAdd(ctx, "characters", rec.Character).Err(); err != nil {
		return fmt.Errorf("failed to index character: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadAlignments(ctx context.Context) ([]*alignment.Record, error) {
	names, err := r.client.SMembers(ctx, "characters").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}

	records := make([]*alignment.Record, 0, len(names))
	for _, name := range names {
		data, err := r.client.Get(ctx, "alignment:"+name).Result()
		if err != nil {
			if err == redis.Nil {
				r.logger.Warn("Indexed alignment record missing", "character", name)
				continue
			}
			return nil, fmt.Errorf("failed to load alignment for %s: %w", name, err)
		}

		var rec alignment.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alignment for %s: %w", name, err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Quest operations. Quests live in a per-character list, newest first.

func (r *RedisStorage) SaveQuest(ctx context.Context, q *quest.Quest) error {
	data, err := json.Marshal(q)
	if err != nil {
		r.logger.Error("Failed to marshal quest", "quest_id", q.ID, "error", err)
		return fmt.Errorf("failed to marshal quest: %w", err)
	}

	key := "quests:" + q.Character
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, 0, questHistoryCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to save quest", "quest_id", q.ID, "error", err)
		return fmt.Errorf("failed to save quest: %w", err)
	}
	return nil
}

func (r *RedisStorage) RecentQuests(ctx context.Context, character string, n int) ([]*quest.Quest, error) {
	key := "quests:" + character
	end := int64(n - 1)
	if n <= 0 {
		end = -1
	}

	items, err := r.client.LRange(ctx, key, 0, end).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to load recent quests: %w", err)
	}

	quests := make([]*quest.Quest, 0, len(items))
	for _, item := range items {
		var q quest.Quest
		if err := json.Unmarshal([]byte(item), &q); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quest: %w", err)
		}
		quests = append(quests, &q)
	}
	return quests, nil
}
