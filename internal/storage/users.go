package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/user"
)

// SaveUser inserts or updates a user record.
func (db *DB) SaveUser(ctx context.Context, u *user.User) error {
	interests, err := json.Marshal(emptyIfNil(u.TravelInterests))
	if err != nil {
		return fmt.Errorf("failed to encode travel interests: %w", err)
	}
	destinations, err := json.Marshal(emptyIfNil(u.PreferredDestinations))
	if err != nil {
		return fmt.Errorf("failed to encode preferred destinations: %w", err)
	}

	lastSeen := u.LastSeen.Unix()
	if u.LastSeen.IsZero() {
		lastSeen = nowUnix()
	}

	query := `
		INSERT INTO users (
			psid, first_name, last_name, locale, timezone, gender,
			occupation, travel_interests, budget_range, trip_type,
			preferred_destinations, travel_season, last_seen
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(psid) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			locale = excluded.locale,
			timezone = excluded.timezone,
			gender = excluded.gender,
			occupation = excluded.occupation,
			travel_interests = excluded.travel_interests,
			budget_range = excluded.budget_range,
			trip_type = excluded.trip_type,
			preferred_destinations = excluded.preferred_destinations,
			travel_season = excluded.travel_season,
			last_seen = excluded.last_seen
	`

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, query,
		u.PSID, u.FirstName, u.LastName, u.Locale, u.Timezone, u.Gender,
		u.Occupation, string(interests), u.BudgetRange, u.TripType,
		string(destinations), u.TravelSeason, lastSeen,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save user",
			"psid", u.PSID,
			"error", err)
		return fmt.Errorf("failed to save user: %w", err)
	}

	if duration := time.Since(start); duration > 100*time.Millisecond {
		slog.WarnContext(ctx, "slow database operation",
			"operation", "SaveUser",
			"duration_ms", duration.Milliseconds(),
			"psid", u.PSID)
	}
	return nil
}

// GetUser retrieves a user by page-scoped id. Returns (nil, nil) when
// the user is unknown.
func (db *DB) GetUser(ctx context.Context, psid string) (*user.User, error) {
	query := `
		SELECT psid, first_name, last_name, locale, timezone, gender,
			occupation, travel_interests, budget_range, trip_type,
			preferred_destinations, travel_season, last_seen
		FROM users WHERE psid = ?
	`

	var u user.User
	var interests, destinations string
	var lastSeen int64

	err := db.conn.QueryRowContext(ctx, query, psid).Scan(
		&u.PSID, &u.FirstName, &u.LastName, &u.Locale, &u.Timezone, &u.Gender,
		&u.Occupation, &interests, &u.BudgetRange, &u.TripType,
		&destinations, &u.TravelSeason, &lastSeen,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query user",
			"psid", psid,
			"error", err)
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := json.Unmarshal([]byte(interests), &u.TravelInterests); err != nil {
		return nil, fmt.Errorf("failed to decode travel interests: %w", err)
	}
	if err := json.Unmarshal([]byte(destinations), &u.PreferredDestinations); err != nil {
		return nil, fmt.Errorf("failed to decode preferred destinations: %w", err)
	}
	u.LastSeen = time.Unix(lastSeen, 0)

	return &u, nil
}

// TouchUser updates the last-seen timestamp for a returning visitor.
func (db *DB) TouchUser(ctx context.Context, psid string) error {
	query := `UPDATE users SET last_seen = ? WHERE psid = ?`
	if _, err := db.conn.ExecContext(ctx, query, nowUnix(), psid); err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return nil
}

// DeleteStaleUsers removes users not seen within the retention window.
// Returns the number of deleted rows.
func (db *DB) DeleteStaleUsers(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := nowUnix() - int64(retention.Seconds())

	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE last_seen < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale users: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted users: %w", err)
	}
	if deleted > 0 {
		slog.InfoContext(ctx, "deleted stale users", "count", deleted)
	}
	return deleted, nil
}

// CountUsers returns the total number of stored users.
func (db *DB) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
