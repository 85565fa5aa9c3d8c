package sitebrief

import (
	"context"
	"time"
)

// ScanStatus describes the outcome of a full pipeline run for one URL.
type ScanStatus string

// ScanStatus values.
const (
	ScanSuccess ScanStatus = "success"
	ScanFailed  ScanStatus = "failed"
)

// Brief is the pipeline's final output for one URL: a validated record plus
// palette and quality score, or an explicit failure. A failed Brief never
// carries a fabricated Record; absent data stays absent.
type Brief struct {
	ID           string            `json:"id"`
	URL          string            `json:"url"`
	Status       ScanStatus        `json:"status"`
	Record       *ExtractionRecord `json:"record,omitempty"`
	Palette      ColorPalette      `json:"palette,omitempty"`
	QualityScore float64           `json:"qualityScore,omitempty"`
	QualityGrade QualityGrade      `json:"qualityGrade,omitempty"`
	StrategyUsed StrategyName      `json:"strategyUsed,omitempty"`

	// PromptStrategy names the prompt strategy that produced the accepted
	// record, distinct from the retrieval strategy above.
	PromptStrategy string `json:"promptStrategy,omitempty"`

	ErrorCode string `json:"errorCode,omitempty"`
	Error     string `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// BriefFilter selects briefs in FindBriefs. Nil fields are ignored.
type BriefFilter struct {
	ID     *string
	URL    *string
	Status *ScanStatus

	Limit  int
	Offset int
}

// BriefService manages persisted scan results.
type BriefService interface {
	// CreateBrief stores a brief. The brief's ID must be set by the
	// pipeline; CreatedAt is assigned on insert.
	CreateBrief(ctx context.Context, brief *Brief) error

	// FindBriefByID returns the brief with the given ID, or ENOTFOUND.
	FindBriefByID(ctx context.Context, id string) (*Brief, error)

	// FindBriefs returns briefs matching the filter, newest first.
	FindBriefs(ctx context.Context, filter BriefFilter) ([]*Brief, error)

	// DeleteBrief permanently removes a brief, or ENOTFOUND.
	DeleteBrief(ctx context.Context, id string) error
}

// BriefWriter exports briefs outside the database, e.g. as JSON files.
type BriefWriter interface {
	WriteBrief(ctx context.Context, brief *Brief) error
}
