package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorSlice(t *testing.T) {
	var errs ErrorSlice
	errs = errs.Append(nil)
	assert.Len(t, errs, 0)
	errs = errs.Append(errors.New("a"))
	errs = errs.Append(ErrorSlice{errors.New("b"), errors.New("c")})
	assert.Len(t, errs, 3)
	assert.EqualError(t, errs, "a, b, c")
}

func TestErrorMap(t *testing.T) {
	errs := ErrorMap{}
	errs.Add("b", "required")
	errs.Add("a", "not a string")
	errs.Add("b", "too short")
	assert.EqualError(t, errs, "a is [not a string], b is [required too short]")
}
