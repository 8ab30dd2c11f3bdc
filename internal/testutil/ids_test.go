package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("order", "order-a", "order-b")

	assert.Equal(t, "order-a", gen.Generate())
	assert.Equal(t, "order-b", gen.Generate())
	assert.Equal(t, "order-3", gen.Generate())
}

func TestSequenceGenerator_DefaultPrefix(t *testing.T) {
	gen := NewSequenceGenerator("")
	assert.Equal(t, "id-1", gen.Generate())
}
