package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// JudgeCacheStats summarizes the judge cache.
type JudgeCacheStats struct {
	Entries int            `json:"entries"`
	Expired int            `json:"expired"`
	Hits    int            `json:"hits"`
	Drivers map[string]int `json:"drivers"`
}

// GetJudgeCache returns a cached judge response if present and not expired.
func (s *Store) GetJudgeCache(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil || s.DB == nil {
		return nil, false, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("cache key is required")
	}

	row := s.DB.QueryRowContext(ctx,
		`SELECT response_json, expires_at FROM judge_cache WHERE cache_key = ?`,
		key,
	)

	var (
		response string
		expires  int64
	)
	if err := row.Scan(&response, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	if s.now().After(time.Unix(expires, 0).UTC()) {
		return nil, false, nil
	}

	if _, err := s.DB.ExecContext(ctx, `UPDATE judge_cache SET hits = hits + 1 WHERE cache_key = ?`, key); err != nil {
		return nil, false, err
	}
	return []byte(response), true, nil
}

// SetJudgeCache stores a judge response with TTL. A non-positive TTL is a
// no-op.
func (s *Store) SetJudgeCache(ctx context.Context, key, driverName, model string, payload []byte, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 {
		return nil
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO judge_cache (cache_key, driver, model, response_json, hits, created_at, expires_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)
		 ON CONFLICT(cache_key)
		 DO UPDATE SET response_json = excluded.response_json,
		               hits = 0,
		               created_at = excluded.created_at,
		               expires_at = excluded.expires_at`,
		key, driverName, model, string(payload), now.Unix(), expiresAt.Unix(),
	)
	return err
}

// PurgeJudgeCache deletes expired entries, or every entry when all is set.
// It returns the number of rows removed.
func (s *Store) PurgeJudgeCache(ctx context.Context, all bool) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		result sql.Result
		err    error
	)
	if all {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM judge_cache`)
	} else {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM judge_cache WHERE expires_at < ?`, s.now().Unix())
	}
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// JudgeCacheStats reports entry counts per driver/model.
func (s *Store) JudgeCacheStats(ctx context.Context) (*JudgeCacheStats, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT driver, model, COUNT(*), COALESCE(SUM(hits), 0),
		        COALESCE(SUM(CASE WHEN expires_at < ? THEN 1 ELSE 0 END), 0)
		 FROM judge_cache GROUP BY driver, model ORDER BY driver, model`,
		s.now().Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	stats := &JudgeCacheStats{Drivers: map[string]int{}}
	for rows.Next() {
		var (
			driverName string
			model      string
			entries    int
			hits       int
			expired    int
		)
		if err := rows.Scan(&driverName, &model, &entries, &hits, &expired); err != nil {
			return nil, err
		}
		label := driverName
		if model != "" {
			label += "/" + model
		}
		stats.Drivers[label] = entries
		stats.Entries += entries
		stats.Hits += hits
		stats.Expired += expired
	}
	return stats, rows.Err()
}

func (s *Store) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}
