package schema

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeValidator(t *testing.T) {
	want := time.Date(2018, 11, 18, 17, 15, 16, 0, time.UTC)
	for _, value := range []interface{}{
		"2018-11-18T17:15:16Z",
		"2018-11-18T18:15:16+01:00",
		"2018-11-18 17:15:16",
		[]byte("2018-11-18T17:15:16Z"),
		want.In(time.FixedZone("X", 3600)),
	} {
		v, err := Time{}.Validate(value)
		assert.NoError(t, err, "%v", value)
		assert.True(t, want.Equal(v.(time.Time)), "%v", value)
		assert.Equal(t, time.UTC, v.(time.Time).Location())
	}
	_, err := Time{}.Validate("not a date")
	assert.EqualError(t, err, "not a time")
	_, err = Time{}.Validate(42)
	assert.EqualError(t, err, "not a time")
}

func TestTimeLayouts(t *testing.T) {
	v := &Time{TimeLayouts: []string{"02/01/2006"}}
	assert.NoError(t, v.Compile())
	got, err := v.Validate("18/11/2018")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2018, 11, 18, 0, 0, 0, 0, time.UTC), got)
	_, err = v.Validate("2018-11-18T17:15:16Z")
	assert.EqualError(t, err, "not a time")
}

func TestTimeHooks(t *testing.T) {
	before := time.Now().UTC()
	v := CreatedField.OnInit(context.Background(), nil)
	assert.False(t, v.(time.Time).Before(before))
	assert.NotNil(t, UpdatedField.OnUpdate)
}
