package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/internal/config"
)

func TestExitErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	ee := fail(exitRuntimeError, inner)

	var target *exitError
	assert.ErrorAs(t, ee, &target)
	assert.Equal(t, exitRuntimeError, target.code)
	assert.Equal(t, "boom", ee.Error())
	assert.Same(t, inner, errors.Unwrap(ee))
}

func TestColorizeErrorRespectsNoColor(t *testing.T) {
	plain := colorizeError(config.Config{NoColor: true}, "oops")
	assert.Equal(t, "oops", plain)

	colored := colorizeError(config.Config{NoColor: false}, "oops")
	assert.Contains(t, colored, "oops")
}

func TestDefaultOutputName(t *testing.T) {
	assert.Equal(t, "foo.sg", defaultOutputName("foo.smog"))
	assert.Equal(t, "foo.sg", defaultOutputName("foo"))
}

func TestIsSGFile(t *testing.T) {
	assert.True(t, isSGFile("program.sg"))
	assert.False(t, isSGFile("program.smog"))
	assert.False(t, isSGFile("sg"))
}
