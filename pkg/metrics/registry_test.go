package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledByDefault(t *testing.T) {
	ResetForTest()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
	assert.Nil(t, NewEngineMetrics())
}

func TestInitRegistryEnables(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	reg := InitRegistry()
	assert.NotNil(t, reg)
	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())
}

func TestInitRegistryIdempotent(t *testing.T) {
	ResetForTest()
	defer ResetForTest()

	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}
