package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/schema"
)

// execQuerier is implemented by *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// conn implements resource.Querier over an execQuerier.
type conn struct {
	ex      execQuerier
	dialect string
	// serialize makes statements run one at a time, rows being fully read
	// before the next statement starts.
	serialize bool
	mu        sync.Mutex
}

func (c *conn) lock() func() {
	if !c.serialize {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

func (c *conn) exec(ctx context.Context, b *builder) (sql.Result, error) {
	defer c.lock()()
	res, err := c.ex.ExecContext(ctx, b.String(), b.args...)
	return res, classify(err)
}

// query runs the statement of b and returns every row as a map of column
// values.
func (c *conn) query(ctx context.Context, b *builder) ([]map[string]interface{}, error) {
	defer c.lock()()
	rows, err := c.ex.QueryContext(ctx, b.String(), b.args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var result []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Find implements resource.Querier.
func (c *conn) Find(ctx context.Context, m *schema.Model, q *resource.Query) ([]*resource.Record, error) {
	b := newBuilder(c.dialect).write("SELECT ").idents(m.Fields.Names()).write(" FROM ").ident(m.Table)
	b.where(q)
	if q != nil {
		b.orderBy(q.Sort).limit(q.Limit, q.Offset)
	}
	rows, err := c.query(ctx, b)
	if err != nil {
		return nil, err
	}
	records := make([]*resource.Record, 0, len(rows))
	for _, row := range rows {
		values, err := decodeRow(m, row)
		if err != nil {
			return nil, err
		}
		records = append(records, resource.LoadRecord(m, values))
	}
	return records, nil
}

// Count implements resource.Querier.
func (c *conn) Count(ctx context.Context, m *schema.Model, q *resource.Query) (int, error) {
	b := newBuilder(c.dialect).write("SELECT COUNT(*) AS ").ident("count").write(" FROM ").ident(m.Table)
	b.where(q)
	rows, err := c.query(ctx, b)
	if err != nil {
		return 0, err
	}
	if len(rows) != 1 {
		return 0, fmt.Errorf("count %s: unexpected result", m.Table)
	}
	n, err := toInt64(rows[0]["count"])
	return int(n), err
}

// Insert implements resource.Querier. When the record has no primary key,
// the key assigned by the database is set on the record.
func (c *conn) Insert(ctx context.Context, r *resource.Record) error {
	m := r.Model
	var columns []string
	for _, k := range sortedKeys(r.Values) {
		if _, found := m.Fields[k]; !found {
			continue
		}
		if k == m.PrimaryKey && r.Values[k] == nil {
			continue
		}
		columns = append(columns, k)
	}
	b := newBuilder(c.dialect).write("INSERT INTO ").ident(m.Table)
	switch {
	case len(columns) > 0:
		b.write(" (").idents(columns).write(") VALUES (")
		for i, col := range columns {
			if i > 0 {
				b.write(", ")
			}
			b.arg(encode(r.Values[col]))
		}
		b.write(")")
	case c.dialect == MySQL:
		b.write(" () VALUES ()")
	default:
		b.write(" DEFAULT VALUES")
	}
	if r.ID() != nil {
		_, err := c.exec(ctx, b)
		return err
	}
	if c.dialect == MySQL {
		res, err := c.exec(ctx, b)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.Set(m.PrimaryKey, id)
		return nil
	}
	b.write(" RETURNING ").ident(m.PrimaryKey)
	rows, err := c.query(ctx, b)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return fmt.Errorf("insert %s: no key returned", m.Table)
	}
	id, err := decode(m.PrimaryField(), rows[0][m.PrimaryKey])
	if err != nil {
		return err
	}
	r.Set(m.PrimaryKey, id)
	return nil
}

// Update implements resource.Querier.
func (c *conn) Update(ctx context.Context, m *schema.Model, q *resource.Query, values map[string]interface{}) (int, error) {
	b := newBuilder(c.dialect).write("UPDATE ").ident(m.Table).write(" SET ")
	n := 0
	for _, k := range sortedKeys(values) {
		if k == m.PrimaryKey {
			continue
		}
		if n > 0 {
			b.write(", ")
		}
		b.ident(k).write(" = ").arg(encode(values[k]))
		n++
	}
	if n == 0 {
		return c.Count(ctx, m, q)
	}
	b.where(q)
	return c.affected(ctx, b)
}

// Delete implements resource.Querier.
func (c *conn) Delete(ctx context.Context, m *schema.Model, q *resource.Query) (int, error) {
	b := newBuilder(c.dialect).write("DELETE FROM ").ident(m.Table)
	b.where(q)
	return c.affected(ctx, b)
}

func (c *conn) affected(ctx context.Context, b *builder) (int, error) {
	res, err := c.exec(ctx, b)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
