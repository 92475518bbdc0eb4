package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/prereq-engine/pkg/check"
	"github.com/jwebster45206/prereq-engine/pkg/requirement"
	"github.com/redis/go-redis/v9"
)

// Check record operations (Redis-backed). Records are append-only audit
// history: saved once, never updated, no TTL.

func recordKey(id string) string {
	return "checkrecord:" + id
}

func recordIndexKey(subject requirement.SubjectRef) string {
	return fmt.Sprintf("checkrecords:%s:%s", subject.Kind, subject.ID)
}

func (r *RedisStorage) SaveCheckRecord(ctx context.Context, record *check.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		r.logger.Error("Failed to marshal check record", "uuid", record.ID, "error", err)
		return fmt.Errorf("failed to marshal check record: %w", err)
	}

	if err := r.client.Set(ctx, recordKey(record.ID.String()), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save check record", "uuid", record.ID, "error", err)
		return fmt.Errorf("failed to save check record: %w", err)
	}

	// Append to the per-subject history list, oldest first
	if err := r.client.RPush(ctx, recordIndexKey(record.Subject), record.ID.String()).Err(); err != nil {
		r.logger.Error("Failed to index check record", "uuid", record.ID, "error", err)
		return fmt.Errorf("failed to index check record: %w", err)
	}

	return nil
}

func (r *RedisStorage) ListCheckRecords(ctx context.Context, subject requirement.SubjectRef) ([]*check.Record, error) {
	ids, err := r.client.LRange(ctx, recordIndexKey(subject), 0, -1).Result()
	if err != nil && err != redis.Nil {
		r.logger.Error("Failed to list check record index", "subject", subject.String(), "error", err)
		return nil, fmt.Errorf("failed to list check records: %w", err)
	}

	records := make([]*check.Record, 0, len(ids))
	for _, id := range ids {
		cmd := r.client.Get(ctx, recordKey(id))
		if err := cmd.Err(); err != nil {
			if err == redis.Nil {
				continue
			}
			r.logger.Error("Failed to load check record", "uuid", id, "error", err)
			return nil, fmt.Errorf("failed to load check record: %w", err)
		}

		var record check.Record
		if err := json.Unmarshal([]byte(cmd.Val()), &record); err != nil {
			r.logger.Error("Failed to unmarshal check record", "uuid", id, "error", err)
			return nil, fmt.Errorf("failed to unmarshal check record: %w", err)
		}
		records = append(records, &record)
	}

	return records, nil
}
