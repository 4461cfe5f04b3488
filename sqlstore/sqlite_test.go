package sqlstore_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/schema"
	"github.com/rs/rest-layer-orm/sqlstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const models = `
models:
  - name: User
    fields:
      created: {type: created}
      name: {type: string, required: true, max_len: 150}
      email: {type: string}
    associations:
      - {kind: has_many, name: Tasks, target: Task}
  - name: Task
    fields:
      name: {type: string, required: true}
      done: {type: bool, default: false}
      weight: {type: float}
    associations:
      - {kind: belongs_to, name: User, target: User}
      - {kind: belongs_to_many, name: Tags, target: Tag, through: TaskTag}
  - name: Tag
    fields:
      label: {type: string, required: true}
  - name: TaskTag
    table: task_tags
`

func newSQLiteService(t *testing.T) (*resource.Service, *sqlstore.Store, *schema.Index) {
	t.Helper()
	ms, err := schema.LoadYAML(strings.NewReader(models))
	require.NoError(t, err)
	index, err := schema.NewIndex(ms...)
	require.NoError(t, err)
	store, err := sqlstore.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateTables(context.Background(), index))
	svc, err := resource.NewService(index, store)
	require.NoError(t, err)
	return svc, store, index
}

func count(t *testing.T, store *sqlstore.Store, table string) int {
	t.Helper()
	var n int
	require.NoError(t, store.DB().QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func TestSQLitePersist(t *testing.T) {
	svc, store, _ := newSQLiteService(t)
	ctx := context.Background()

	u, err := svc.Persist(ctx, schema.Name("User"), map[string]interface{}{
		"name":  "Foo Bar",
		"email": "foo@bar.com",
		"Tasks": []interface{}{
			map[string]interface{}{"name": "Write", "weight": 0.5},
			map[string]interface{}{"name": "Review", "Tags": []interface{}{}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID())
	assert.IsType(t, time.Time{}, u.Get("created"))
	tasks := u.Related("Tasks")
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, u.ID(), task.Get("user_id"))
		assert.Equal(t, false, task.Get("done"))
	}

	task, err := svc.Persist(ctx, schema.Name("Task"), map[string]interface{}{
		"name": "Tagged",
		"User": u.ID(),
		"Tags": []interface{}{
			map[string]interface{}{"label": "a"},
			map[string]interface{}{"label": "b"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID(), task.Get("user_id"))
	assert.Equal(t, "Foo Bar", task.RelatedOne("User").Get("name"))
	assert.Len(t, task.Related("Tags"), 2)
	assert.Equal(t, 2, count(t, store, "task_tags"))

	list, err := svc.Find(ctx, schema.Name("Task"), &resource.Query{
		Where: map[string]interface{}{"user_id": u.ID()},
		Sort:  []string{"-name"},
		Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Records, 2)
	assert.Equal(t, "Write", list.Records[0].Get("name"))
	assert.Equal(t, 0.5, list.Records[0].Get("weight"))
}

func TestSQLiteAtomicity(t *testing.T) {
	svc, store, _ := newSQLiteService(t)
	ctx := context.Background()

	_, err := svc.Persist(ctx, schema.Name("User"), map[string]interface{}{
		"name": "New User",
		"Tasks": []interface{}{
			map[string]interface{}{"name": "Created then rolled back"},
			map[string]interface{}{"id": 999},
		},
	})
	assert.True(t, errors.Is(err, resource.ErrNotFound))
	assert.Equal(t, 0, count(t, store, "users"))
	assert.Equal(t, 0, count(t, store, "tasks"))

	_, err = svc.Persist(ctx, schema.Name("User"), map[string]interface{}{})
	assert.True(t, errors.Is(err, resource.ErrBadRequest))
}

func TestSQLiteDelete(t *testing.T) {
	svc, store, _ := newSQLiteService(t)
	ctx := context.Background()
	task, err := svc.Persist(ctx, schema.Name("Task"), map[string]interface{}{
		"name": "Task",
		"Tags": []interface{}{map[string]interface{}{"label": "a"}},
	})
	require.NoError(t, err)

	n, err := svc.DeleteSubResources(ctx, schema.Name("Task"), task.ID(), "Tags", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, count(t, store, "task_tags"))
	assert.Equal(t, 1, count(t, store, "tags"))

	require.NoError(t, svc.Delete(ctx, schema.Name("Task"), task.ID()))
	err = svc.Delete(ctx, schema.Name("Task"), task.ID())
	assert.True(t, errors.Is(err, resource.ErrNotFound))
}
