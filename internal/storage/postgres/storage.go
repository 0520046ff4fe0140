package postgres

import (
	"database/sql"
	"strconv"
	"strings"
)

// Storage groups the SQL repositories. The same queries run on Postgres
// (lib/pq) and on sqlite (modernc) for local runs and tests.
type Storage struct {
	*AuditRepository
}

func NewStorage(db *sql.DB, driver string) *Storage {
	return &Storage{
		AuditRepository: NewAuditRepository(db, driver),
	}
}

// rebind rewrites "?" placeholders into "$N" for Postgres.
func rebind(driver, query string) string {
	if driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
