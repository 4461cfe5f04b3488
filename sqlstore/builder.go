package sqlstore

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rs/rest-layer-orm/resource"
)

// builder builds one SQL statement and collects its arguments.
type builder struct {
	dialect string
	sb      strings.Builder
	args    []interface{}
}

func newBuilder(dialect string) *builder {
	return &builder{dialect: dialect}
}

func (b *builder) String() string {
	return b.sb.String()
}

func (b *builder) write(s ...string) *builder {
	for _, p := range s {
		b.sb.WriteString(p)
	}
	return b
}

// ident writes a quoted identifier.
func (b *builder) ident(name string) *builder {
	if b.dialect == MySQL {
		b.sb.WriteString("`" + strings.ReplaceAll(name, "`", "``") + "`")
		return b
	}
	b.sb.WriteString(`"` + strings.ReplaceAll(name, `"`, `""`) + `"`)
	return b
}

// idents writes a comma separated list of quoted identifiers.
func (b *builder) idents(names []string) *builder {
	for i, name := range names {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.ident(name)
	}
	return b
}

// arg writes the placeholder of a new argument.
func (b *builder) arg(v interface{}) *builder {
	b.args = append(b.args, v)
	if b.dialect == Postgres {
		b.sb.WriteString("$" + strconv.Itoa(len(b.args)))
		return b
	}
	b.sb.WriteString("?")
	return b
}

// where writes the where clause of q, if any. Conditions are written in
// field name order.
func (b *builder) where(q *resource.Query) *builder {
	if q == nil || len(q.Where) == 0 {
		return b
	}
	fields := make([]string, 0, len(q.Where))
	for f := range q.Where {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	b.write(" WHERE ")
	for i, f := range fields {
		if i > 0 {
			b.write(" AND ")
		}
		switch v := q.Where[f].(type) {
		case nil:
			b.ident(f).write(" IS NULL")
		case []interface{}:
			if len(v) == 0 {
				b.write("1 = 0")
				continue
			}
			b.ident(f).write(" IN (")
			for j, item := range v {
				if j > 0 {
					b.write(", ")
				}
				b.arg(item)
			}
			b.write(")")
		default:
			b.ident(f).write(" = ").arg(v)
		}
	}
	return b
}

func (b *builder) orderBy(fields []string) *builder {
	if len(fields) == 0 {
		return b
	}
	b.write(" ORDER BY ")
	for i, f := range fields {
		if i > 0 {
			b.write(", ")
		}
		if strings.HasPrefix(f, "-") {
			b.ident(f[1:]).write(" DESC")
			continue
		}
		b.ident(f)
	}
	return b
}

func (b *builder) limit(limit, offset int) *builder {
	if limit > 0 {
		b.write(" LIMIT ", strconv.Itoa(limit))
	} else if offset > 0 {
		switch b.dialect {
		case SQLite:
			b.write(" LIMIT -1")
		case MySQL:
			b.write(" LIMIT 18446744073709551615")
		}
	}
	if offset > 0 {
		b.write(" OFFSET ", strconv.Itoa(offset))
	}
	return b
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
