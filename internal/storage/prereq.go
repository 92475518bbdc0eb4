package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
	"github.com/redis/go-redis/v9"
)

// Prerequisite operations (Redis-backed)

const prereqIndexKey = "prereqs"

func prereqKey(id uuid.UUID) string {
	return "prereq:" + id.String()
}

func (r *RedisStorage) SavePrerequisite(ctx context.Context, p *requirement.Prerequisite) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("Failed to marshal prerequisite", "uuid", p.ID, "error", err)
		return fmt.Errorf("failed to marshal prerequisite: %w", err)
	}

	if err := r.client.Set(ctx, prereqKey(p.ID), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save prerequisite", "uuid", p.ID, "error", err)
		return fmt.Errorf("failed to save prerequisite: %w", err)
	}

	// Track the ID in the index set so listing does not need KEYS
	if err := r.client.SAdd(ctx, prereqIndexKey, p.ID.String()).Err(); err != nil {
		r.logger.Error("Failed to index prerequisite", "uuid", p.ID, "error", err)
		return fmt.Errorf("failed to index prerequisite: %w", err)
	}

	return nil
}

func (r *RedisStorage) GetPrerequisite(ctx context.Context, id uuid.UUID) (*requirement.Prerequisite, error) {
	cmd := r.client.Get(ctx, prereqKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			r.logger.Warn("Prerequisite not found", "uuid", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load prerequisite", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load prerequisite: %w", err)
	}

	var p requirement.Prerequisite
	if err := json.Unmarshal([]byte(cmd.Val()), &p); err != nil {
		r.logger.Error("Failed to unmarshal prerequisite", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal prerequisite: %w", err)
	}

	return &p, nil
}

func (r *RedisStorage) ListPrerequisites(ctx context.Context) ([]*requirement.Prerequisite, error) {
	ids, err := r.client.SMembers(ctx, prereqIndexKey).Result()
	if err != nil && err != redis.Nil {
		r.logger.Error("Failed to list prerequisite index", "error", err)
		return nil, fmt.Errorf("failed to list prerequisites: %w", err)
	}

	prereqs := make([]*requirement.Prerequisite, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			r.logger.Warn("Skipping malformed prerequisite index entry", "entry", raw)
			continue
		}
		p, err := r.GetPrerequisite(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			// Stale index entry; the key expired or was deleted out of band
			continue
		}
		prereqs = append(prereqs, p)
	}

	return prereqs, nil
}

func (r *RedisStorage) DeletePrerequisite(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, prereqKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete prerequisite", "uuid", id, "error", err)
		return fmt.Errorf("failed to delete prerequisite: %w", err)
	}
	if err := r.client.SRem(ctx, prereqIndexKey, id.String()).Err(); err != nil {
		r.logger.Error("Failed to unindex prerequisite", "uuid", id, "error", err)
		return fmt.Errorf("failed to unindex prerequisite: %w", err)
	}
	return nil
}
