package linker

import "github.com/rimvydasb/edgerules-sub002/internal/types"

// builtinSig is a built-in function's arity and type-checking rule
// (spec.md §4.4 / SPEC_FULL.md §7). minArgs/maxArgs bound arity;
// maxArgs == -1 means unbounded (variadic).
type builtinSig struct {
	minArgs, maxArgs int
	check            func(args []types.Type) (types.Type, error)
}

func arityOK(sig builtinSig, n int) bool {
	if n < sig.minArgs {
		return false
	}
	if sig.maxArgs >= 0 && n > sig.maxArgs {
		return false
	}
	return true
}

func fixedResult(result types.Type) func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) { return result, nil }
}

func elemOfFirstList() func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) {
		if len(args) == 0 || args[0].Kind != types.KindList {
			return types.Unresolved, nil
		}
		if args[0].Elem == nil {
			return types.Any, nil
		}
		return *args[0].Elem, nil
	}
}

func sameAsFirst() func([]types.Type) (types.Type, error) {
	return func(args []types.Type) (types.Type, error) {
		if len(args) == 0 {
			return types.Unresolved, nil
		}
		return args[0], nil
	}
}

// builtins is the registered built-in function table, grouped by
// SPEC_FULL.md §7's file split (builtins_string/list/temporal/math.go
// in the evaluator package mirror this same grouping).
var builtins = map[string]builtinSig{
	// string
	"substring":        {2, 3, fixedResult(types.String)},
	"length":           {1, 1, fixedResult(types.Number)},
	"toUpperCase":      {1, 1, fixedResult(types.String)},
	"toLowerCase":      {1, 1, fixedResult(types.String)},
	"substringBefore":  {2, 2, fixedResult(types.String)},
	"substringAfter":   {2, 2, fixedResult(types.String)},
	"contains":         {2, 2, fixedResult(types.Boolean)},
	"startsWith":       {2, 2, fixedResult(types.Boolean)},
	"endsWith":         {2, 2, fixedResult(types.Boolean)},
	"split":            {2, 2, fixedResult(types.List(types.String))},
	"trim":             {1, 1, fixedResult(types.String)},
	"replace":          {3, 3, fixedResult(types.String)},
	"replaceFirst":     {3, 3, fixedResult(types.String)},
	"indexOf":          {2, 2, fixedResult(types.Number)},
	"lastIndexOf":      {2, 2, fixedResult(types.Number)},
	"padStart":         {2, 3, fixedResult(types.String)},
	"padEnd":           {2, 3, fixedResult(types.String)},
	"repeat":           {2, 2, fixedResult(types.String)},
	"toString":         {1, 1, fixedResult(types.String)},
	"toNumber":         {1, 1, fixedResult(types.Number)},

	// list
	"all":             {1, 1, fixedResult(types.Boolean)},
	"any":             {1, 1, fixedResult(types.Boolean)},
	"append":          {2, 2, sameAsFirst()},
	"concatenate":     {2, -1, sameAsFirst()},
	"remove":          {2, 2, sameAsFirst()},
	"reverse":         {1, 1, sameAsFirst()},
	"sort":            {1, 1, sameAsFirst()},
	"sortDescending":  {1, 1, sameAsFirst()},
	"union":           {2, -1, sameAsFirst()},
	"distinctValues":  {1, 1, sameAsFirst()},
	"duplicateValues": {1, 1, sameAsFirst()},
	"flatten":         {1, 1, elemOfFirstList()},
	"join":            {1, 2, fixedResult(types.String)},
	"isEmpty":         {1, 1, fixedResult(types.Boolean)},
	"min":             {1, 1, elemOfFirstList()},
	"max":             {1, 1, elemOfFirstList()},
	"sum":             {1, 1, fixedResult(types.Number)},
	"product":         {1, 1, fixedResult(types.Number)},
	"mean":            {1, 1, fixedResult(types.Number)},
	"median":          {1, 1, fixedResult(types.Number)},
	"stddev":          {1, 1, fixedResult(types.Number)},
	"count":           {1, 1, fixedResult(types.Number)},

	// temporal
	"date":     {1, 3, fixedResult(types.Date)},
	"time":     {1, 4, fixedResult(types.Time)},
	"datetime": {1, 2, fixedResult(types.DateTime)},
	"duration": {1, 1, fixedResult(types.Duration)},
	"period":   {1, 1, fixedResult(types.Period)},

	// math
	"abs":   {1, 1, fixedResult(types.Number)},
	"round": {1, 2, fixedResult(types.Number)},
	"floor": {1, 1, fixedResult(types.Number)},
	"ceil":  {1, 1, fixedResult(types.Number)},
	"sqrt":  {1, 1, fixedResult(types.Number)},
	"pow":   {2, 2, fixedResult(types.Number)},
	"mod":   {2, 2, fixedResult(types.Number)},
}
