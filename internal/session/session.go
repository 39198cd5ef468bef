package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/roster"
)

// KeyUserTypes holds the participant id to tier map.
const KeyUserTypes = "userTypes"

// Session is one conference session's slice of the store.
//
// A Session is used from the coordinator's goroutine only.
type Session struct {
	store *Store
	id    string
}

// ID returns the session id.
func (ss *Session) ID() string {
	return ss.id
}

// Get returns the value stored under key.
func (ss *Session) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := ss.store.db.QueryRowContext(ctx, `
		SELECT value FROM session_values WHERE session_id = ? AND key = ?
	`, ss.id, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (ss *Session) Set(ctx context.Context, key, value string) error {
	_, err := ss.store.db.ExecContext(ctx, `
		INSERT INTO session_values (session_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value
	`, ss.id, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Tiers returns the persisted tier map. Entries that are not valid tiers
// are dropped.
func (ss *Session) Tiers(ctx context.Context) (map[string]roster.Tier, error) {
	raw, ok, err := ss.Get(ctx, KeyUserTypes)
	if err != nil {
		return nil, err
	}
	tiers := map[string]roster.Tier{}
	if !ok {
		return tiers, nil
	}
	stored, err := decodeTierMap(raw)
	if err != nil {
		return nil, err
	}
	for id, v := range stored {
		if t, ok := roster.ParseTier(v); ok {
			tiers[id] = t
		}
	}
	return tiers, nil
}

// LookupTier implements roster.TierLookup.
func (ss *Session) LookupTier(ctx context.Context, participantID string) (roster.Tier, bool, error) {
	tiers, err := ss.Tiers(ctx)
	if err != nil {
		return "", false, fmt.Errorf("lookup tier %s: %w", participantID, err)
	}
	t, ok := tiers[participantID]
	return t, ok, nil
}

// SaveTier records a participant's tier in the map.
func (ss *Session) SaveTier(ctx context.Context, participantID string, tier roster.Tier) error {
	if participantID == "" {
		return errors.New("save tier: empty participant id")
	}
	if !tier.Valid() {
		return fmt.Errorf("save tier %s: invalid tier %q", participantID, tier)
	}

	tx, err := ss.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save tier %s: %w", participantID, err)
	}
	defer tx.Rollback()

	stored := map[string]string{}
	var raw string
	err = tx.QueryRowContext(ctx, `
		SELECT value FROM session_values WHERE session_id = ? AND key = ?
	`, ss.id, KeyUserTypes).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("save tier %s: %w", participantID, err)
	default:
		if stored, err = decodeTierMap(raw); err != nil {
			return fmt.Errorf("save tier %s: %w", participantID, err)
		}
	}

	if stored[participantID] == string(tier) {
		return nil
	}
	stored[participantID] = string(tier)

	data, err := canon.Marshal(stored)
	if err != nil {
		return fmt.Errorf("save tier %s: %w", participantID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO session_values (session_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value
	`, ss.id, KeyUserTypes, string(data))
	if err != nil {
		return fmt.Errorf("save tier %s: %w", participantID, err)
	}
	return tx.Commit()
}

// Observe persists tier changes from roster events. Failures are logged
// and never stop the caller.
func (ss *Session) Observe(ctx context.Context, ev roster.Event) {
	if ev.Kind != roster.EventUserTypeChanged {
		return
	}
	if err := ss.SaveTier(ctx, ev.ParticipantID, ev.Member.Tier); err != nil {
		ss.store.logger.Warn("persist tier failed",
			"session", ss.id,
			"participant", ev.ParticipantID,
			"error", err,
		)
	}
}

func decodeTierMap(raw string) (map[string]string, error) {
	m := map[string]string{}
	if raw == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyUserTypes, err)
	}
	return m, nil
}
