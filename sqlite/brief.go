package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/sitebrief"
)

// Compile-time interface verification.
var _ sitebrief.BriefService = (*BriefService)(nil)

// BriefService implements sitebrief.BriefService using SQLite. The record
// and palette are stored as JSON blobs: they are read and written whole, so
// relational decomposition would only add joins.
type BriefService struct {
	db *DB
}

// NewBriefService creates a new BriefService.
func NewBriefService(db *DB) *BriefService {
	return &BriefService{db: db}
}

// CreateBrief stores a brief.
func (s *BriefService) CreateBrief(ctx context.Context, brief *sitebrief.Brief) error {
	if brief.ID == "" {
		return sitebrief.Errorf(sitebrief.EINVALID, "brief ID required")
	}
	if brief.URL == "" {
		return sitebrief.Errorf(sitebrief.EINVALID, "brief URL required")
	}

	record, err := marshalJSON(brief.Record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	palette, err := marshalJSON(brief.Palette)
	if err != nil {
		return fmt.Errorf("failed to encode palette: %w", err)
	}

	brief.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO briefs (id, url, status, record, palette, quality_score, quality_grade, strategy_used, prompt_strategy, error_code, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, brief.ID, brief.URL, string(brief.Status), record, palette, brief.QualityScore,
		string(brief.QualityGrade), string(brief.StrategyUsed), brief.PromptStrategy,
		brief.ErrorCode, brief.Error, brief.CreatedAt.Format(time.RFC3339))

	return err
}

// FindBriefByID retrieves a brief by ID.
func (s *BriefService) FindBriefByID(ctx context.Context, id string) (*sitebrief.Brief, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+briefColumns+" FROM briefs WHERE id = ?", id)

	brief, err := scanBrief(row.Scan)
	if err == sql.ErrNoRows {
		return nil, sitebrief.Errorf(sitebrief.ENOTFOUND, "brief not found")
	}
	return brief, err
}

// FindBriefs retrieves briefs matching the filter, newest first.
func (s *BriefService) FindBriefs(ctx context.Context, filter sitebrief.BriefFilter) ([]*sitebrief.Brief, error) {
	where, args := briefPredicate(filter)
	page, pageArgs := briefPagination(filter)

	query := "SELECT " + briefColumns + " FROM briefs WHERE " + where +
		" ORDER BY created_at DESC, id" + page
	args = append(args, pageArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var briefs []*sitebrief.Brief
	for rows.Next() {
		brief, err := scanBrief(rows.Scan)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, brief)
	}

	return briefs, rows.Err()
}

// DeleteBrief permanently removes a brief.
func (s *BriefService) DeleteBrief(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM briefs WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sitebrief.Errorf(sitebrief.ENOTFOUND, "brief not found")
	}

	return nil
}

// scanBrief reads one briefs row via the given Scan function.
func scanBrief(scanRow func(dest ...any) error) (*sitebrief.Brief, error) {
	var brief sitebrief.Brief
	var status, record, palette, grade, strategy, createdAt string

	err := scanRow(&brief.ID, &brief.URL, &status, &record, &palette,
		&brief.QualityScore, &grade, &strategy, &brief.PromptStrategy,
		&brief.ErrorCode, &brief.Error, &createdAt)
	if err != nil {
		return nil, err
	}

	brief.Status = sitebrief.ScanStatus(status)
	brief.QualityGrade = sitebrief.QualityGrade(grade)
	brief.StrategyUsed = sitebrief.StrategyName(strategy)

	if record != "" {
		if err := json.Unmarshal([]byte(record), &brief.Record); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
	}
	if palette != "" {
		if err := json.Unmarshal([]byte(palette), &brief.Palette); err != nil {
			return nil, fmt.Errorf("failed to decode palette: %w", err)
		}
	}

	brief.CreatedAt, err = parseStoredTime(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &brief, nil
}

// marshalJSON encodes v, mapping nil to the empty string so absent data
// round-trips as absent.
func marshalJSON(v any) (string, error) {
	switch t := v.(type) {
	case *sitebrief.ExtractionRecord:
		if t == nil {
			return "", nil
		}
	case sitebrief.ColorPalette:
		if t == nil {
			return "", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
