package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rs/rest-layer-orm/schema"
)

func newCompiledTestModels(t *testing.T) (user, task, tag *schema.Model) {
	t.Helper()
	user, task, tag, taskTag := newTestModels()
	user.Fields["created"] = schema.CreatedField
	user.Fields["role"] = schema.Field{Default: "member", Validator: &schema.String{Allowed: []string{"member", "admin"}}}
	user.Fields["secret"] = schema.Field{ReadOnly: true, Validator: &schema.String{}}
	index, err := schema.NewIndex(user, task, tag, taskTag)
	require.NoError(t, err)
	require.NoError(t, index.Compile())
	return user, task, tag
}

func TestModelValidateCreate(t *testing.T) {
	user, _, _ := newCompiledTestModels(t)
	in := map[string]interface{}{"name": "Foo", "Tasks": []interface{}{1}}
	out, err := user.Validate(context.Background(), in, true)
	require.NoError(t, err)
	assert.Equal(t, "Foo", out["name"])
	assert.Equal(t, "member", out["role"])
	assert.NotNil(t, out["created"])
	assert.NotContains(t, out, "Tasks")
	assert.Contains(t, in, "Tasks", "input is left untouched")
	assert.NotContains(t, in, "role")
}

func TestModelValidateIssues(t *testing.T) {
	user, _, _ := newCompiledTestModels(t)
	_, err := user.Validate(context.Background(), map[string]interface{}{
		"role":    "root",
		"secret":  "x",
		"unknown": 1,
	}, true)
	require.IsType(t, schema.ErrorMap{}, err)
	assert.Equal(t, schema.ErrorMap{
		"name":    {"required"},
		"role":    {"not one of [member, admin]"},
		"secret":  {"read-only"},
		"unknown": {"unknown field"},
	}, err)
	assert.EqualError(t, err, "name is [required], role is [not one of [member, admin]], secret is [read-only], unknown is [unknown field]")
}

func TestModelValidateInvalidRequired(t *testing.T) {
	user, _, _ := newCompiledTestModels(t)
	_, err := user.Validate(context.Background(), map[string]interface{}{"name": 1}, true)
	assert.Equal(t, schema.ErrorMap{"name": {"not a string"}}, err)
}

func TestModelValidateUpdate(t *testing.T) {
	user, _, _ := newCompiledTestModels(t)
	out, err := user.Validate(context.Background(), map[string]interface{}{"role": "admin"}, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"role": "admin"}, out)

	_, err = user.Validate(context.Background(), map[string]interface{}{"name": nil}, false)
	assert.NoError(t, err)
}

func TestModelParseID(t *testing.T) {
	user, _, tag := newCompiledTestModels(t)
	for _, id := range []interface{}{"7", 7, int64(7), 7.0} {
		v, err := user.ParseID(id)
		assert.NoError(t, err, "%v", id)
		assert.Equal(t, int64(7), v)
	}
	_, err := user.ParseID("abc")
	assert.EqualError(t, err, "User: invalid id abc: not an integer")
	_, err = user.ParseID(nil)
	assert.EqualError(t, err, "User: missing id")

	_, err = tag.ParseID("abc")
	assert.EqualError(t, err, "Tag: invalid code abc: not a UUID")
	v, err := tag.ParseID("6BA7B810-9DAD-11D1-80B4-00C04FD430C8")
	assert.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", v)
}

func TestModelAssociationLookup(t *testing.T) {
	user, task, _ := newCompiledTestModels(t)
	assert.Equal(t, "Tasks", user.AssociationTo("Task").Name)
	assert.Equal(t, "Tasks", user.AssociationTo("Tasks").Name)
	assert.Nil(t, user.AssociationTo("Tag"))
	assert.True(t, task.IsAssociation("Tags"))
	assert.False(t, task.IsAssociation("name"))
	assert.Nil(t, task.GetField("Tags"))
	assert.Equal(t, "Task", task.TypeName())
	assert.Equal(t, "Task", schema.Name("Task").TypeName())
}
