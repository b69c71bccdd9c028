package interp

import "github.com/rimvydasb/edgerules-sub002/internal/types"

// builtinFuncs is the runtime counterpart of internal/linker's builtins
// table: every name the linker accepts at link time must have a
// runtime implementation here, grouped the same way (string/list/
// temporal/math) across builtins_string.go, builtins_list.go,
// builtins_temporal.go and builtins_math.go.
var builtinFuncs = mergeBuiltins(stringBuiltins(), listBuiltins(), temporalBuiltins(), mathBuiltins())

func mergeBuiltins(groups ...map[string]func(args []types.Value) (types.Value, error)) map[string]func(args []types.Value) (types.Value, error) {
	out := map[string]func(args []types.Value) (types.Value, error){}
	for _, g := range groups {
		for name, fn := range g {
			out[name] = fn
		}
	}
	return out
}
