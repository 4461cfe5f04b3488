package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfDefaults(t *testing.T) {
	c := DefaultConf
	assert.Equal(t, ReadWrite, c.AllowedModes)
	assert.Equal(t, 20, c.PaginationDefaultLimit)
}

func TestIsModeAllowed(t *testing.T) {
	all := []Mode{Create, Read, Update, Replace, Delete, Clear, List}
	for name, tc := range map[string]struct {
		modes   []Mode
		allowed []Mode
	}{
		"read-write": {ReadWrite, all},
		"read-only":  {ReadOnly, []Mode{Read, List}},
		"write-only": {WriteOnly, []Mode{Create, Update, Replace, Delete, Clear}},
		"none":       {nil, nil},
	} {
		t.Run(name, func(t *testing.T) {
			c := Conf{AllowedModes: tc.modes}
			for _, m := range all {
				assert.Equal(t, contains(tc.allowed, m), c.IsModeAllowed(m), "mode %d", m)
			}
		})
	}
}

func contains(modes []Mode, m Mode) bool {
	for _, mode := range modes {
		if mode == m {
			return true
		}
	}
	return false
}
