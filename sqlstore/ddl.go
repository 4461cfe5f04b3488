package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/rest-layer-orm/schema"
)

// CreateTables creates the table of every record type of index when it does
// not exist yet. It is a bootstrap helper for tests and demos, not a
// migration tool: existing tables are left untouched.
func (s *Store) CreateTables(ctx context.Context, index *schema.Index) error {
	if !index.Compiled() {
		if err := index.Compile(); err != nil {
			return err
		}
	}
	for _, m := range index.Models() {
		b := createTable(s.dialect, m)
		if _, err := s.db.ExecContext(ctx, b.String()); err != nil {
			return fmt.Errorf("create table %s: %w", m.Table, err)
		}
	}
	return nil
}

func createTable(dialect string, m *schema.Model) *builder {
	b := newBuilder(dialect).write("CREATE TABLE IF NOT EXISTS ").ident(m.Table).write(" (")
	for i, name := range m.Fields.Names() {
		if i > 0 {
			b.write(", ")
		}
		f := m.Fields[name]
		b.ident(name).write(" ")
		if name == m.PrimaryKey {
			b.write(primaryKeyType(dialect, f))
			continue
		}
		b.write(columnType(dialect, f))
		if f.Required {
			b.write(" NOT NULL")
		}
	}
	return b.write(")")
}

func primaryKeyType(dialect string, f schema.Field) string {
	switch f.Validator.(type) {
	case *schema.Integer, schema.Integer:
		switch dialect {
		case SQLite:
			return "INTEGER PRIMARY KEY AUTOINCREMENT"
		case Postgres:
			return "BIGSERIAL PRIMARY KEY"
		default:
			return "BIGINT AUTO_INCREMENT PRIMARY KEY"
		}
	}
	return columnType(dialect, f) + " PRIMARY KEY"
}

func columnType(dialect string, f schema.Field) string {
	switch v := f.Validator.(type) {
	case *schema.Integer, schema.Integer:
		if dialect == SQLite {
			return "INTEGER"
		}
		return "BIGINT"
	case *schema.Float, schema.Float:
		switch dialect {
		case SQLite:
			return "REAL"
		case Postgres:
			return "DOUBLE PRECISION"
		}
		return "DOUBLE"
	case *schema.Bool, schema.Bool:
		return "BOOLEAN"
	case *schema.Time, schema.Time:
		switch dialect {
		case Postgres:
			return "TIMESTAMPTZ"
		case MySQL:
			return "DATETIME(6)"
		}
		return "DATETIME"
	case *schema.UUID, schema.UUID:
		if dialect == Postgres {
			return "UUID"
		}
		return "VARCHAR(36)"
	case *schema.Password, schema.Password:
		switch dialect {
		case Postgres:
			return "BYTEA"
		case MySQL:
			return "VARBINARY(255)"
		}
		return "BLOB"
	case *schema.String:
		return stringType(dialect, v.MaxLen)
	case schema.String:
		return stringType(dialect, v.MaxLen)
	}
	return "TEXT"
}

func stringType(dialect string, maxLen int) string {
	if dialect == MySQL {
		if maxLen <= 0 || maxLen > 255 {
			maxLen = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", maxLen)
	}
	return "TEXT"
}
