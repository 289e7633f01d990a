// Package natives holds the host functions registered into a freshly
// created VM's globals table before any user program runs (spec §6's
// "native registration": the host supplies (name, callable) pairs).
package natives

import (
	"time"

	"github.com/kristofer/smog/pkg/value"
)

// Registrar is satisfied by *vm.VM; kept as an interface here so this
// package never imports pkg/vm. Neither package imports the other: cmd/smog
// imports both and wires them together.
type Registrar interface {
	DefineNative(name string, fn value.NativeFn)
}

// Install registers every native this package provides into vm.
func Install(vm Registrar) {
	vm.DefineNative("clock", clock)
}

// clock returns seconds since the Unix epoch as a float, the one native
// spec §6 requires.
func clock(args []value.Value) (value.Value, error) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), nil
}
