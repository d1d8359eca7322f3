package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"iso-games-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	createdIndexKey  = "sessions:created"
	maxUpdateRetries = 10
	countBatchSize   = 200
)

// SessionStore is a Redis-backed implementation of app.SessionRepository.
// Sessions are stored as JSON under session:{id}; a sorted set scored by creation
// time (unix millis) lets expiry cleanup find old sessions without a scan.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore sets a key TTL of ttl on every session (no expiry when zero).
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(session.ID), data, s.ttl)
		pipe.ZAdd(ctx, createdIndexKey, redis.Z{
			Score:  float64(session.CreatedAt.UnixMilli()),
			Member: session.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return decodeSession(raw)
}

// Update runs fn inside a WATCH/MULTI transaction, retrying when another
// writer touched the session in between.
func (s *SessionStore) Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error) {
	key := s.key(id)
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		var updated *domain.Session
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				return domain.ErrSessionNotFound
			}
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}
			session, err := decodeSession(raw)
			if err != nil {
				return err
			}
			if err := fn(session); err != nil {
				return err
			}
			data, err := json.Marshal(session)
			if err != nil {
				return fmt.Errorf("encode session: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, redis.KeepTTL)
				return nil
			})
			if err != nil {
				return err
			}
			updated = session
			return nil
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: too many concurrent writers", id)
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, createdIndexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *SessionStore) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, createdIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(cutoff.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("list expired sessions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
		members[i] = id
	}
	var removed *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		removed = pipe.ZRem(ctx, createdIndexKey, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(removed.Val()), nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, createdIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return int(n), nil
}

// CountActive decodes every indexed session and counts the game's active ones.
func (s *SessionStore) CountActive(ctx context.Context, gameID string) (int, error) {
	ids, err := s.client.ZRange(ctx, createdIndexKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	n := 0
	for start := 0; start < len(ids); start += countBatchSize {
		end := start + countBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, s.key(id))
		}
		values, err := s.client.MGet(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("load sessions: %w", err)
		}
		for _, v := range values {
			raw, ok := v.(string)
			if !ok {
				// key expired but still indexed
				continue
			}
			session, err := decodeSession([]byte(raw))
			if err != nil {
				return 0, err
			}
			if session.GameID == gameID && session.Status == domain.StatusActive {
				n++
			}
		}
	}
	return n, nil
}

func (s *SessionStore) key(id string) string {
	return sessionKeyPrefix + id
}

func decodeSession(raw []byte) (*domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}
