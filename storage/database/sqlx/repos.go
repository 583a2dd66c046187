// Package sqlxrepos implements the core repositories on PostgreSQL via sqlx.
package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/schedulink/schedulink/core"
)

// filterQuery accumulates WHERE conditions with positional placeholders.
// Conditions use "?" markers which are rewritten to "$N" as args accumulate.
type filterQuery struct {
	conds []string
	args  []interface{}
}

func (q *filterQuery) add(cond string, args ...interface{}) {
	for _, arg := range args {
		q.args = append(q.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(q.args)), 1)
	}
	q.conds = append(q.conds, cond)
}

// next returns the placeholder an extra argument appended after the WHERE
// clause would get.
func (q *filterQuery) next() string {
	return fmt.Sprintf("$%d", len(q.args)+1)
}

func (q *filterQuery) clause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

func orderClause(ordering []core.DBOrdering, deflt string) string {
	if len(ordering) == 0 {
		if deflt == "" {
			return ""
		}
		return " ORDER BY " + deflt
	}
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return " ORDER BY " + strings.Join(orderList, ", ")
}
