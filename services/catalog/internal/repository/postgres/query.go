package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashc0d3/RUBLESTORE-GLOBAL/pkg/database"
)

// where accumulates AND-ed conditions with positional arguments.
type where struct {
	conds []string
	args  []any
}

// add appends a condition. format receives the argument's placeholder
// index, e.g. "slug = ANY($%d)".
func (w *where) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

// page appends LIMIT and OFFSET when limit is positive and returns the
// clause and the final argument list.
func (w *where) page(limit, offset int) (string, []any) {
	if limit <= 0 {
		return "", w.args
	}
	n := len(w.args)
	return fmt.Sprintf("LIMIT $%d OFFSET $%d", n+1, n+2), append(w.args, limit, offset)
}

// countRows counts the rows of from matching w. List queries read their
// total from count(*) OVER(), which is absent when a page past the end
// returns no rows; they fall back to this.
func countRows(ctx context.Context, db database.DBTX, op, from string, w *where) (n int, err error) {
	query := strings.TrimSpace(fmt.Sprintf("SELECT count(*) %s %s", strings.TrimSpace(from), w.String()))

	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	if err = db.QueryRow(ctx, query, w.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}
