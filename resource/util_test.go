package resource

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeValue(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, loc)
	for _, tc := range []struct {
		in, want interface{}
	}{
		{1, int64(1)},
		{int32(-2), int64(-2)},
		{uint8(3), int64(3)},
		{4.0, int64(4)},
		{float32(5), int64(5)},
		{4.5, 4.5},
		{[]byte("abc"), "abc"},
		{now, now.UTC()},
		{"x", "x"},
		{nil, nil},
	} {
		assert.Equal(t, tc.want, NormalizeValue(tc.in), "%#v", tc.in)
	}
}

func TestEqual(t *testing.T) {
	now := time.Now()
	assert.True(t, Equal(1, int64(1)))
	assert.True(t, Equal(1.0, uint16(1)))
	assert.True(t, Equal(now, now.In(time.FixedZone("X", 3600))))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(1, "1"))
	assert.False(t, Equal(now, now.Add(time.Second)))
	assert.False(t, Equal([]interface{}{1}, []interface{}{1}))
}

func TestUniqueValues(t *testing.T) {
	assert.Equal(t, []interface{}{1, "a", 2.5}, uniqueValues([]interface{}{1, "a", int64(1), 2.5, "a", 1.0}))
	assert.Equal(t, []interface{}{}, uniqueValues(nil))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty(""))
	assert.True(t, isEmpty(map[string]interface{}{}))
	assert.True(t, isEmpty([]interface{}{}))
	assert.False(t, isEmpty(0))
	assert.False(t, isEmpty([]interface{}{nil}))
}
