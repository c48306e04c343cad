// Package userdata is the optional profile and search-history store. Every
// read is best-effort: when the store is unconfigured or unreachable the
// request proceeds without personalization instead of failing.
package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/agenthands/concierge/internal/model"
)

const historyMaxEntries = 50

type SearchRecord struct {
	Query     string               `json:"query"`
	Answers   map[string]string    `json:"answers,omitempty"`
	Results   []model.SearchResult `json:"results,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type Store struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewStore wraps a Redis client. A nil client yields a store whose reads
// return nothing and whose writes are no-ops.
func NewStore(rdb *redis.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{rdb: rdb, log: log}
}

func (s *Store) Available() bool {
	return s != nil && s.rdb != nil
}

// Profile fetches a user profile. Missing profiles and store errors both
// come back as (nil, nil); errors are logged, never surfaced.
func (s *Store) Profile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if !s.Available() {
		s.log.Warn("user_profile_store_unavailable", zap.String("user_id", userID))
		return nil, nil
	}

	raw, err := s.rdb.Get(ctx, profileKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.log.Debug("user_profile_not_found", zap.String("user_id", userID))
			return nil, nil
		}
		s.log.Error("user_profile_fetch_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	var profile model.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		s.log.Error("user_profile_decode_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}
	return &profile, nil
}

// SaveProfile stores a user profile after validating it.
func (s *Store) SaveProfile(ctx context.Context, userID string, profile *model.UserProfile) error {
	if !s.Available() {
		return nil
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, profileKey(userID), raw, 0).Err()
}

// SearchHistory returns the user's most recent searches, newest first.
func (s *Store) SearchHistory(ctx context.Context, userID string, limit int) ([]SearchRecord, error) {
	if !s.Available() {
		s.log.Warn("search_history_store_unavailable", zap.String("user_id", userID))
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.rdb.LRange(ctx, historyKey(userID), 0, int64(limit-1)).Result()
	if err != nil {
		s.log.Error("search_history_fetch_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, nil
	}

	records := make([]SearchRecord, 0, len(entries))
	for _, entry := range entries {
		var rec SearchRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			s.log.Warn("search_history_entry_corrupt", zap.String("user_id", userID), zap.Error(err))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordSearch prepends a search to the user's history, keeping the newest
// entries only. Failures are logged and swallowed; history is never worth
// failing a request over.
func (s *Store) RecordSearch(ctx context.Context, userID string, rec SearchRecord) {
	if !s.Available() || userID == "" {
		return
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.Error("search_history_encode_failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	key := historyKey(userID)
	if err := s.rdb.LPush(ctx, key, raw).Err(); err != nil {
		s.log.Error("search_history_record_failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if err := s.rdb.LTrim(ctx, key, 0, historyMaxEntries-1).Err(); err != nil {
		s.log.Warn("search_history_trim_failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func profileKey(userID string) string {
	return fmt.Sprintf("user:profile:%s", userID)
}

func historyKey(userID string) string {
	return fmt.Sprintf("user:history:%s", userID)
}
