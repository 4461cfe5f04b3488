// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// JSONEq reports an error to t, along with a diff, if expect and actual do
// not hold equivalent JSON documents. Key order and number formatting are
// ignored. An empty actual body is reported as such rather than as a decode
// error. Returns true if no error was reported.
func JSONEq(t testing.TB, expect, actual []byte) bool {
	t.Helper()
	if len(actual) == 0 {
		t.Errorf("expected JSON body `%s`, got an empty body", expect)
		return false
	}
	return assert.JSONEq(t, string(expect), string(actual))
}
