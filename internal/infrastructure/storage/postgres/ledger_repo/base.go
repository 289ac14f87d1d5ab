// Package ledger_repo reads raw sale and repair-service records for ledger computation.
package ledger_repo

import (
	"time"

	"github.com/Masterminds/squirrel"

	"ganji/internal/core/id"
	"ganji/internal/domain/calendar"
	"ganji/internal/infrastructure/storage/postgres"
)

// base carries what sale and service readers share.
type base struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	loc     *time.Location
}

func newBase(txm *postgres.TxManager, loc *time.Location) base {
	if loc == nil {
		loc = time.UTC
	}
	return base{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		loc:     loc,
	}
}

// windowPredicate selects rows whose effective date falls in the window, plus rows
// with no date at all so normalization can report them instead of losing them.
// dateCol falls back to created_at exactly like the normalizer does.
func (b base) windowPredicate(dateCol string, w calendar.Window) squirrel.Sqlizer {
	from := w.Start.Time(b.loc)
	to := w.End.AddDays(1).Time(b.loc)
	effective := "COALESCE(" + dateCol + ", created_at)"

	return squirrel.Or{
		squirrel.And{
			squirrel.GtOrEq{effective: from},
			squirrel.Lt{effective: to},
		},
		squirrel.And{
			squirrel.Eq{dateCol: nil},
			squirrel.Eq{"created_at": nil},
		},
	}
}

func ownerPredicate(ownerID *id.ID) squirrel.Sqlizer {
	if ownerID == nil {
		return nil
	}
	return squirrel.Eq{"salesman_id": *ownerID}
}
