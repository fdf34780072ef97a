// Package redisstate implements the StateRepository port on Redis: presence
// hashes, the change-feed pub/sub transport and rate-limit counters.
package redisstate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

// RedisStateRepository is the Redis-backed StateRepository.
type RedisStateRepository struct {
	client    *redis.Client
	keyPrefix string
}

func NewRedisStateRepository(client *redis.Client, keyPrefix string) *RedisStateRepository {
	if client == nil {
		panic("redis client cannot be nil for RedisStateRepository")
	}
	if keyPrefix == "" {
		keyPrefix = "ct:" // campaign-table
	}
	return &RedisStateRepository{client: client, keyPrefix: keyPrefix}
}

// --- Key helpers ---

func (r *RedisStateRepository) presenceKey(campaignID string) string {
	return fmt.Sprintf("%scampaign:%s:presence", r.keyPrefix, campaignID)
}

func (r *RedisStateRepository) feedChannel(campaignID string) string {
	return fmt.Sprintf("%scampaign:%s:feed", r.keyPrefix, campaignID)
}

func (r *RedisStateRepository) rateLimitKey(key string) string {
	return r.keyPrefix + "ratelimit:" + key
}

// --- Presence ---

func (r *RedisStateRepository) WriteHeartbeat(ctx context.Context, campaignID string, presence domain.Presence) error {
	bytes, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("redis: marshal presence for %s: %w", presence.ParticipantID, err)
	}
	key := r.presenceKey(campaignID)
	if err := r.client.HSet(ctx, key, presence.ParticipantID, string(bytes)).Err(); err != nil {
		return fmt.Errorf("redis: write heartbeat for %s on %s: %w", presence.ParticipantID, key, err)
	}
	return nil
}

func (r *RedisStateRepository) RemovePresence(ctx context.Context, campaignID, participantID string) error {
	key := r.presenceKey(campaignID)
	if err := r.client.HDel(ctx, key, participantID).Err(); err != nil {
		return fmt.Errorf("redis: remove presence of %s from %s: %w", participantID, key, err)
	}
	return nil
}

func (r *RedisStateRepository) ListPresence(ctx context.Context, campaignID string) ([]domain.Presence, error) {
	key := r.presenceKey(campaignID)
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: list presence from %s: %w", key, err)
	}
	records := make([]domain.Presence, 0, len(fields))
	for participantID, raw := range fields {
		var presence domain.Presence
		if err := json.Unmarshal([]byte(raw), &presence); err != nil {
			logrus.WithError(err).WithField("participant_id", participantID).
				Warn("redis: dropping unreadable presence record")
			continue
		}
		records = append(records, presence)
	}
	return records, nil
}

func (r *RedisStateRepository) PrunePresence(ctx context.Context, campaignID string, cutoff time.Time) (int64, error) {
	key := r.presenceKey(campaignID)
	fields, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: list presence for prune from %s: %w", key, err)
	}

	stale := make([]string, 0)
	for participantID, raw := range fields {
		var presence domain.Presence
		if err := json.Unmarshal([]byte(raw), &presence); err != nil {
			stale = append(stale, participantID) // unreadable records go too
			continue
		}
		if presence.LastHeartbeat.Before(cutoff) {
			stale = append(stale, participantID)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	removed, err := r.client.HDel(ctx, key, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: prune presence on %s: %w", key, err)
	}
	return removed, nil
}

func (r *RedisStateRepository) PresenceCampaigns(ctx context.Context) ([]string, error) {
	pattern := r.keyPrefix + "campaign:*:presence"
	var campaignIDs []string
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		trimmed := strings.TrimPrefix(key, r.keyPrefix+"campaign:")
		trimmed = strings.TrimSuffix(trimmed, ":presence")
		if trimmed != "" && trimmed != key {
			campaignIDs = append(campaignIDs, trimmed)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan presence keys: %w", err)
	}
	return campaignIDs, nil
}

// --- Change feed ---

func (r *RedisStateRepository) PublishChange(ctx context.Context, campaignID string, event domain.ChangeEvent) error {
	bytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal change event for path %s: %w", event.Path, err)
	}
	channel := r.feedChannel(campaignID)
	if err := r.client.Publish(ctx, channel, string(bytes)).Err(); err != nil {
		return fmt.Errorf("redis: publish change on %s: %w", channel, err)
	}
	return nil
}

// SubscribeChanges rides the go-redis pub/sub, which reconnects internally on
// transient failures. Undecodable payloads are logged and skipped rather than
// tearing the subscription down.
func (r *RedisStateRepository) SubscribeChanges(ctx context.Context, campaignID string) (<-chan domain.ChangeEvent, func() error, error) {
	channel := r.feedChannel(campaignID)
	pubsub := r.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("redis: subscribe to %s: %w", channel, err)
	}

	events := make(chan domain.ChangeEvent, 16)
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			var event domain.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logrus.WithError(err).WithField("channel", channel).
					Warn("redis: dropping unreadable change event")
				continue
			}
			events <- event
		}
	}()
	return events, pubsub.Close, nil
}

// --- Rate limiting ---

func (r *RedisStateRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := r.rateLimitKey(key)
	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis: rate limit check on %s: %w", fullKey, err)
	}
	return incr.Val() > int64(limit), nil
}
