package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogUsableBeforeSetup(t *testing.T) {
	assert.NotNil(t, Log)
	assert.NotPanics(t, func() {
		Info("boot message", "key", "value")
		Warn("boot warning")
	})
}

func TestSetupReplacesGlobal(t *testing.T) {
	before := Log
	Setup("production")
	assert.NotNil(t, Log)
	assert.NotSame(t, before, Log)
}
