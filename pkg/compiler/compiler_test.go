package compiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/smog/pkg/compiler"
	"github.com/kristofer/smog/pkg/gc"
)

func TestCompileSimpleProgram(t *testing.T) {
	h := gc.New(false)
	fn, ok := compiler.Compile(`var x = 1 + 2; print x;`, h, nil)
	require.True(t, ok)
	require.NotNil(t, fn)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileSyntaxErrorReportsAndFails(t *testing.T) {
	h := gc.New(false)
	var errOut bytes.Buffer
	fn, ok := compiler.Compile(`var x = ;`, h, &errOut)
	assert.False(t, ok)
	assert.Nil(t, fn)
	assert.Contains(t, errOut.String(), "Error")
}

func TestCompileRejectsReturnAtTopLevel(t *testing.T) {
	h := gc.New(false)
	var errOut bytes.Buffer
	_, ok := compiler.Compile(`return 1;`, h, &errOut)
	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "top-level")
}

func TestCompileRejectsSelfReferentialInitializer(t *testing.T) {
	h := gc.New(false)
	var errOut bytes.Buffer
	_, ok := compiler.Compile(`{ var a = a; }`, h, &errOut)
	assert.False(t, ok)
	assert.Contains(t, errOut.String(), "own initializer")
}

func TestCompileClassWithSuperAndMethods(t *testing.T) {
	h := gc.New(false)
	src := `
		class Animal {
			speak() { print "..."; }
		}
		class Dog < Animal {
			speak() { super.speak(); print "woof"; }
		}
	`
	fn, ok := compiler.Compile(src, h, nil)
	require.True(t, ok)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileRecoversAfterErrorAndKeepsParsing(t *testing.T) {
	h := gc.New(false)
	var errOut bytes.Buffer
	_, ok := compiler.Compile(`var; var y = 1;`, h, &errOut)
	assert.False(t, ok)
	// synchronize() should have resumed at the second statement without a
	// second, unrelated cascade of errors about 'y'.
	assert.Equal(t, 1, strings.Count(errOut.String(), "Error"))
}
