package sqlite

import (
	"strings"
	"time"

	"github.com/fwojciec/sitebrief"
)

// briefColumns is the column list shared by every briefs SELECT, in the
// order scanBrief reads them.
const briefColumns = "id, url, status, record, palette, quality_score, quality_grade, strategy_used, prompt_strategy, error_code, error, created_at"

// briefPredicate renders a BriefFilter into a WHERE clause and its
// arguments. Nil filter fields are ignored.
func briefPredicate(filter sitebrief.BriefFilter) (string, []any) {
	where, args := []string{"1 = 1"}, []any{}
	if filter.ID != nil {
		where, args = append(where, "id = ?"), append(args, *filter.ID)
	}
	if filter.URL != nil {
		where, args = append(where, "url = ?"), append(args, *filter.URL)
	}
	if filter.Status != nil {
		where, args = append(where, "status = ?"), append(args, string(*filter.Status))
	}
	return strings.Join(where, " AND "), args
}

// briefPagination renders the filter's LIMIT/OFFSET clause; empty when
// unset.
func briefPagination(filter sitebrief.BriefFilter) (string, []any) {
	var clause strings.Builder
	var args []any
	if filter.Limit > 0 {
		clause.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		clause.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}
	return clause.String(), args
}

// parseStoredTime reads an RFC3339 timestamp column. All timestamps are
// written by this package, so a parse failure means the row is corrupt and
// is surfaced as an internal error.
func parseStoredTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, sitebrief.Errorf(sitebrief.EINTERNAL, "invalid %s value %q: %v", column, value, err)
	}
	return t, nil
}
