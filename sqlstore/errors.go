package sqlstore

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rs/rest-layer-orm/resource"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MySQL error numbers of constraint violations.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // Column cannot be null
	1062: true, // Duplicate entry
	1216: true, // Cannot add or update a child row (legacy)
	1217: true, // Cannot delete or update a parent row (legacy)
	1451: true, // Cannot delete or update a parent row
	1452: true, // Cannot add or update a child row
}

// classify wraps constraint violation errors into a KindConflict
// resource.Error. The driver error stays reachable with errors.As.
func classify(err error) error {
	if err == nil || !isConstraintError(err) {
		return err
	}
	return &resource.Error{
		Kind:    resource.KindConflict,
		Message: "constraint violation",
		Err:     err,
	}
}

func isConstraintError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 23: integrity constraint violation.
		return len(pgErr.Code) == 5 && pgErr.Code[:2] == "23"
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlConstraintErrors[myErr.Number]
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
