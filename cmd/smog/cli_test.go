package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/smog/internal/config"
)

func TestCompileThenRunBytecodeFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.smog")
	require.NoError(t, os.WriteFile(src, []byte(`print 1 + 2;`), 0o644))

	var compileOut bytes.Buffer
	require.NoError(t, compileFile(config.Config{}, src, "", &compileOut))

	sgPath := filepath.Join(dir, "hello.sg")
	_, err := os.Stat(sgPath)
	require.NoError(t, err, "compile should write hello.sg next to hello.smog")

	require.NoError(t, runFile(config.Config{}, sgPath))
}

func TestDisassembleSourceFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.smog")
	require.NoError(t, os.WriteFile(src, []byte(`print "hi";`), 0o644))

	var out bytes.Buffer
	require.NoError(t, disassembleFile(config.Config{}, src, &out))
	assert.Contains(t, out.String(), "== script ==")
}

func TestRunFileReportsCompileErrorExitCode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.smog")
	require.NoError(t, os.WriteFile(src, []byte(`var x = ;`), 0o644))

	err := runFile(config.Config{}, src)
	require.Error(t, err)
	var ee *exitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, exitCompileError, ee.code)
}
