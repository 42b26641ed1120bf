package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "session:"

	maxTouchRetries = 3
)

// Store はセッションレコードを Redis に保存します。
type Store struct {
	rdb *redis.Client
}

// NewStore は Store を作成します。
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get はセッションレコードを取得します。存在しない場合は nil, nil を返します。
func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}
	data, err := s.rdb.Get(ctx, key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Save はセッションレコードを ttl 付きで保存します。
func (s *Store) Save(ctx context.Context, record *Record, ttl time.Duration) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.Token == "" {
		return fmt.Errorf("record.Token is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(record.Token), payload, ttl).Err()
}

// Touch は最終アクセス時刻を更新し、TTL を延長します。
// レコードが既に無い場合は何もしません。
func (s *Store) Touch(ctx context.Context, token string, at time.Time, ttl time.Duration) error {
	k := key(token)
	for i := 0; i < maxTouchRetries; i++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, k).Bytes()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					return nil
				}
				return err
			}
			var record Record
			if err := json.Unmarshal(data, &record); err != nil {
				return err
			}
			record.LastActivity = at
			payload, err := json.Marshal(&record)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, k, payload, ttl)
				return nil
			})
			return err
		}, k)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return redis.TxFailedErr
}

// Delete はセッションレコードを削除します。存在しなくてもエラーにはなりません。
func (s *Store) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, key(token)).Err()
}

func key(token string) string {
	return keyPrefix + token
}
