package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var (
	// ErrNotFound is returned when no outcome has the requested ID
	ErrNotFound = errors.New("outcome not found")
	// ErrInvalidID is returned for IDs that are not UUIDs
	ErrInvalidID = errors.New("invalid outcome id")
)

// OutcomeSummary is the listing view of a stored outcome
type OutcomeSummary struct {
	ID               string    `json:"id"`
	JobTitle         string    `json:"job_title"`
	Company          string    `json:"company"`
	MatchScore       int       `json:"match_score"`
	Quick            bool      `json:"quick"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// SummaryOf builds the listing view of an outcome
func SummaryOf(o *types.TailoringOutcome) OutcomeSummary {
	s := OutcomeSummary{
		ID:               o.ID,
		MatchScore:       o.MatchScore,
		Quick:            o.Quick,
		ProcessingTimeMs: o.ProcessingTimeMs,
		CreatedAt:        o.CreatedAt,
	}
	if o.Requirements != nil {
		s.JobTitle = o.Requirements.Title
		s.Company = o.Requirements.Company
	}
	return s
}

// SaveOutcome stores an outcome, replacing any row with the same ID
func (db *DB) SaveOutcome(ctx context.Context, o *types.TailoringOutcome) error {
	id, err := uuid.Parse(o.ID)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, o.ID)
	}
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	s := SummaryOf(o)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO tailoring_outcomes (id, job_title, company, match_score, quick, processing_time_ms, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET job_title = $2, company = $3, match_score = $4, quick = $5,
		   processing_time_ms = $6, payload = $7`,
		id, s.JobTitle, s.Company, s.MatchScore, s.Quick, s.ProcessingTimeMs, payload, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome %s: %w", o.ID, err)
	}
	return nil
}

// GetOutcome loads a full outcome by ID
func (db *DB) GetOutcome(ctx context.Context, id string) (*types.TailoringOutcome, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	var payload []byte
	err = db.pool.QueryRow(ctx,
		`SELECT payload FROM tailoring_outcomes WHERE id = $1`, uid,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome %s: %w", id, err)
	}

	var o types.TailoringOutcome
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("failed to decode outcome %s: %w", id, err)
	}
	return &o, nil
}

// ListOutcomes returns outcome summaries, newest first
func (db *DB) ListOutcomes(ctx context.Context, limit, offset int) ([]OutcomeSummary, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := db.pool.Query(ctx,
		`SELECT id, job_title, company, match_score, quick, processing_time_ms, created_at
		 FROM tailoring_outcomes
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	summaries := make([]OutcomeSummary, 0, limit)
	for rows.Next() {
		var s OutcomeSummary
		var id uuid.UUID
		if err := rows.Scan(&id, &s.JobTitle, &s.Company, &s.MatchScore, &s.Quick, &s.ProcessingTimeMs, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		s.ID = id.String()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}
	return summaries, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
