package natives_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/smog/pkg/natives"
	"github.com/kristofer/smog/pkg/value"
)

type fakeRegistrar struct {
	registered map[string]value.NativeFn
}

func (f *fakeRegistrar) DefineNative(name string, fn value.NativeFn) {
	if f.registered == nil {
		f.registered = map[string]value.NativeFn{}
	}
	f.registered[name] = fn
}

func TestInstallRegistersClock(t *testing.T) {
	reg := &fakeRegistrar{}
	natives.Install(reg)

	fn, ok := reg.registered["clock"]
	require.True(t, ok)

	result, err := fn(nil)
	require.NoError(t, err)
	assert.True(t, result.IsNumber())
	assert.GreaterOrEqual(t, result.AsNumber(), 0.0)
}
