package sqlstore

import (
	"testing"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/stretchr/testify/assert"
)

func TestBuilderWhere(t *testing.T) {
	q := resource.NewQuery(map[string]interface{}{
		"name":    "a",
		"user_id": []interface{}{1, 2},
		"done":    nil,
		"tag_id":  []interface{}{},
	})
	for _, tc := range []struct {
		dialect string
		want    string
	}{
		{Postgres, ` WHERE "done" IS NULL AND "name" = $1 AND 1 = 0 AND "user_id" IN ($2, $3)`},
		{SQLite, ` WHERE "done" IS NULL AND "name" = ? AND 1 = 0 AND "user_id" IN (?, ?)`},
		{MySQL, " WHERE `done` IS NULL AND `name` = ? AND 1 = 0 AND `user_id` IN (?, ?)"},
	} {
		b := newBuilder(tc.dialect).where(q)
		assert.Equal(t, tc.want, b.String(), tc.dialect)
		assert.Equal(t, []interface{}{"a", 1, 2}, b.args)
	}
	assert.Equal(t, "", newBuilder(SQLite).where(nil).String())
	assert.Equal(t, "", newBuilder(SQLite).where(resource.NewQuery(nil)).String())
}

func TestBuilderIdent(t *testing.T) {
	assert.Equal(t, `"we""ird"`, newBuilder(Postgres).ident(`we"ird`).String())
	assert.Equal(t, "`we``ird`", newBuilder(MySQL).ident("we`ird").String())
	assert.Equal(t, `"a", "b"`, newBuilder(SQLite).idents([]string{"a", "b"}).String())
}

func TestBuilderOrderLimit(t *testing.T) {
	b := newBuilder(Postgres).orderBy([]string{"-created", "id"}).limit(10, 20)
	assert.Equal(t, ` ORDER BY "created" DESC, "id" LIMIT 10 OFFSET 20`, b.String())

	for dialect, want := range map[string]string{
		Postgres: " OFFSET 5",
		SQLite:   " LIMIT -1 OFFSET 5",
		MySQL:    " LIMIT 18446744073709551615 OFFSET 5",
	} {
		assert.Equal(t, want, newBuilder(dialect).limit(0, 5).String(), dialect)
	}
	assert.Equal(t, "", newBuilder(SQLite).orderBy(nil).limit(0, 0).String())
}
