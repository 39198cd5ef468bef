package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedPassID(t *testing.T) {
	g := NewFixedPassID("pass-fixed")
	assert.Equal(t, "pass-fixed", g.Generate())
	assert.Equal(t, "pass-fixed", g.Generate())

	assert.Equal(t, "test-pass", NewFixedPassID("").Generate())
}
