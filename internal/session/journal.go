package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/tierview/internal/canon"
	"github.com/roach88/tierview/internal/geometry"
	"github.com/roach88/tierview/internal/roster"
)

// PlacementRecord is one journaled placement.
type PlacementRecord struct {
	ID            string             `json:"id"`
	PassID        string             `json:"passId"`
	Seq           int64              `json:"seq"`
	ParticipantID string             `json:"participantId"`
	Tier          roster.Tier        `json:"tier"`
	Placement     geometry.Placement `json:"placement"`
}

// RecordPlacement appends a placement to the journal. The record id is
// derived from its content, so recording the same record twice is a no-op.
func (ss *Session) RecordPlacement(ctx context.Context, rec PlacementRecord) error {
	placement, err := canon.Marshal(rec.Placement.Canonical())
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}

	id, err := canon.Fingerprint(canon.DomainPlacement, map[string]any{
		"session":     ss.id,
		"pass":        rec.PassID,
		"seq":         rec.Seq,
		"participant": rec.ParticipantID,
		"tier":        string(rec.Tier),
		"placement":   rec.Placement.Canonical(),
	})
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}

	_, err = ss.store.db.ExecContext(ctx, `
		INSERT INTO placements
		(id, session_id, pass_id, seq, participant_id, tier, placement)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		id,
		ss.id,
		rec.PassID,
		rec.Seq,
		rec.ParticipantID,
		string(rec.Tier),
		string(placement),
	)
	if err != nil {
		return fmt.Errorf("record placement: %w", err)
	}
	return nil
}

// Placements returns the journal in emission order: seq ASC, id ASC.
// participantID filters to one member when not empty.
func (ss *Session) Placements(ctx context.Context, participantID string) ([]PlacementRecord, error) {
	query := `
		SELECT id, pass_id, seq, participant_id, tier, placement
		FROM placements
		WHERE session_id = ?`
	args := []any{ss.id}
	if participantID != "" {
		query += ` AND participant_id = ?`
		args = append(args, participantID)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := ss.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	records := []PlacementRecord{}
	for rows.Next() {
		var (
			rec       PlacementRecord
			tier      string
			placement string
		)
		if err := rows.Scan(&rec.ID, &rec.PassID, &rec.Seq, &rec.ParticipantID, &tier, &placement); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		rec.Tier = roster.Tier(tier)
		if err := json.Unmarshal([]byte(placement), &rec.Placement); err != nil {
			return nil, fmt.Errorf("decode placement %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placements: %w", err)
	}
	return records, nil
}
