package interp

import (
	"fmt"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

type namedLocal struct {
	name string
	val  types.Value
}

type funcBinding struct {
	fn    *ast.UserFunction
	owner *Environment
}

// Evaluator walks a linked AST, producing runtime Values. It holds the
// small amount of state a tree-walking interpreter needs beyond each
// Environment's own per-field memoization: the `it`/for-loop value
// stack, and a registry of function values seen so far (so a function
// passed around as data can still be called later by name).
type Evaluator struct {
	locals   []namedLocal
	registry map[string]funcBinding

	// envs remembers the long-lived Environment created for each
	// "data" ContextObject (root and nested object literals) so a
	// host outside the evaluation itself — the decision controller's
	// path navigation — can find the right memoization frame for a
	// nested context without re-walking expressions. Function-call
	// frames are deliberately not registered here: they are
	// one-shot per spec.md §4.4 and must never be reused.
	envs map[*ast.ContextObject]*Environment
}

// NewEvaluator creates an Evaluator ready to run against one linked
// model. Evaluators are not safe to reuse across unrelated models.
func NewEvaluator() *Evaluator {
	return &Evaluator{registry: map[string]funcBinding{}, envs: map[*ast.ContextObject]*Environment{}}
}

func (ev *Evaluator) pushLocal(name string, v types.Value) { ev.locals = append(ev.locals, namedLocal{name, v}) }
func (ev *Evaluator) popLocal()                             { ev.locals = ev.locals[:len(ev.locals)-1] }

func (ev *Evaluator) newDataEnv(ctx *ast.ContextObject, parent *Environment) *Environment {
	env := NewEnvironment(ctx, parent)
	ev.envs[ctx] = env
	return env
}

// Root creates the top-level Environment for a linked root context.
func (ev *Evaluator) Root(root *ast.ContextObject) *Environment {
	return ev.newDataEnv(root, nil)
}

// EnvFor returns the long-lived Environment previously created for ctx
// by Root or by evaluating the object literal that declares it, or nil
// if ctx has not been reached yet.
func (ev *Evaluator) EnvFor(ctx *ast.ContextObject) *Environment {
	return ev.envs[ctx]
}

// CallFunction invokes fn with already-evaluated args, bound against
// owner (the Environment of the context that declared fn). It is the
// entry point external callers — the decision controller's Execute —
// use to run a named function without going through a CallExpr.
func (ev *Evaluator) CallFunction(fn *ast.UserFunction, owner *Environment, args []types.Value) (types.Value, error) {
	callEnv := NewEnvironment(fn.Body, owner)
	callEnv.params = args

	if idx := fn.Body.FieldIndex("return"); idx >= 0 {
		return ev.EvalField(callEnv, "return")
	}
	obj, _ := ev.EvalAllFields(callEnv)
	return obj, nil
}

// EvalField lazily computes and memoizes ctx.<name> within env,
// returning a sticky error on repeated failure (spec.md §4.4).
func (ev *Evaluator) EvalField(env *Environment, name string) (types.Value, error) {
	idx := env.Ctx.FieldIndex(name)
	if idx < 0 {
		return nil, &ast.FieldNotFoundError{Name: name}
	}
	switch env.states[name] {
	case computed:
		return env.values[name], nil
	case failed:
		return nil, env.errs[name]
	case inProgress:
		err := &CyclicEvaluationError{Name: name}
		env.states[name] = failed
		env.errs[name] = err
		return nil, err
	}

	env.states[name] = inProgress
	field := env.Ctx.Fields[idx]

	var v types.Value
	var err error
	if _, ok := field.Expr.(*ast.PlaceholderExpr); ok {
		v = types.NewMissing(field.Name)
	} else {
		v, err = ev.eval(env, field.Expr)
	}

	if err != nil {
		env.states[name] = failed
		env.errs[name] = err
		return nil, err
	}
	env.states[name] = computed
	env.values[name] = v
	return v, nil
}

// EvalAllFields forces every field of env in declaration order. A
// failing field does not abort the others (spec.md §7: "evaluating
// 'all fields' continues past a failed field ... and still succeeds
// overall"); its error is collected and, in the returned ObjectValue,
// represented as Missing(name) so the aggregate still renders. Callers
// that need the real error (diagnostics, decision-service responses)
// read it from the returned map.
func (ev *Evaluator) EvalAllFields(env *Environment) (types.ObjectValue, map[string]error) {
	out := types.ObjectValue{}
	var errs map[string]error
	for _, f := range env.Ctx.Fields {
		v, err := ev.EvalField(env, f.Name)
		if err != nil {
			if errs == nil {
				errs = map[string]error{}
			}
			errs[f.Name] = err
			v = types.NewMissing(f.Name)
		}
		out.Fields = append(out.Fields, types.FieldValue{Name: f.Name, Value: v})
	}
	return out, errs
}

func (ev *Evaluator) eval(env *Environment, expr ast.Expression) (types.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return types.NumberValue{V: e.Value}, nil
	case *ast.StringLiteral:
		return types.StringValue{V: e.Value}, nil
	case *ast.BooleanLiteral:
		return types.BooleanValue{V: e.Value}, nil
	case *ast.PlaceholderExpr:
		return types.NewMissing(e.TypeName), nil
	case *ast.Identifier:
		return ev.evalIdentifier(env, e)
	case *ast.WildcardExpr:
		if len(ev.locals) == 0 {
			return nil, fmt.Errorf("'it'/'...' used outside a filter or comprehension")
		}
		return ev.locals[len(ev.locals)-1].val, nil
	case *ast.PathAccess:
		return ev.evalPathAccess(env, e)
	case *ast.UnaryExpr:
		v, err := ev.eval(env, e.Operand)
		if err != nil {
			return nil, err
		}
		return evalUnary(e.Op, v)
	case *ast.BinaryExpr:
		lv, err := ev.eval(env, e.Left)
		if err != nil {
			return nil, err
		}
		rv, err := ev.eval(env, e.Right)
		if err != nil {
			return nil, err
		}
		return evalBinary(e.Op, lv, rv)
	case *ast.RangeExpr:
		return ev.evalRange(env, e)
	case *ast.IfExpr:
		return ev.evalIf(env, e)
	case *ast.ForExpr:
		return ev.evalFor(env, e)
	case *ast.ListLiteral:
		return ev.evalList(env, e)
	case *ast.ObjectLiteral:
		inner := ev.newDataEnv(e.Context, env)
		obj, _ := ev.EvalAllFields(inner)
		return obj, nil
	case *ast.CastExpr:
		return ev.evalCast(env, e)
	case *ast.FilterExpr:
		return ev.evalFilter(env, e)
	case *ast.CallExpr:
		return ev.evalCall(env, e)
	default:
		return nil, fmt.Errorf("cannot evaluate %T", expr)
	}
}

func (ev *Evaluator) evalIdentifier(env *Environment, id *ast.Identifier) (types.Value, error) {
	node, _ := id.Ref.(*linker.LinkedNode)
	if node == nil {
		for i := len(ev.locals) - 1; i >= 0; i-- {
			if ev.locals[i].name == id.Name {
				return ev.locals[i].val, nil
			}
		}
		return nil, fmt.Errorf("unresolved identifier '%s'", id.Name)
	}
	switch node.Kind {
	case linker.RefField:
		owner := env.findEnv(node.Owner)
		if owner == nil {
			return nil, fmt.Errorf("internal error: no environment for field '%s'", node.Name)
		}
		return ev.EvalField(owner, node.Name)
	case linker.RefParam:
		owner := env.findEnv(node.Owner)
		if owner == nil || node.ParamIndex >= len(owner.params) {
			return types.NewMissing(node.Name), nil
		}
		return owner.params[node.ParamIndex], nil
	case linker.RefFunctionValue:
		owner := env.findEnv(node.Owner)
		ev.registry[node.Function.Name] = funcBinding{fn: node.Function, owner: owner}
		return types.FunctionValue{Name: node.Function.Name}, nil
	default:
		return nil, fmt.Errorf("unresolved identifier '%s'", id.Name)
	}
}

func (ev *Evaluator) evalPathAccess(env *Environment, p *ast.PathAccess) (types.Value, error) {
	baseV, err := ev.eval(env, p.Base)
	if err != nil {
		return nil, err
	}
	if m, ok := types.IsMissing(baseV); ok {
		return m, nil
	}
	obj, ok := baseV.(types.ObjectValue)
	if !ok {
		return nil, fmt.Errorf("cannot access field '%s' on %s", p.Segment, baseV.Kind())
	}
	if v, ok := obj.Get(p.Segment); ok {
		return v, nil
	}
	return types.NewMissing(p.Segment), nil
}

func (ev *Evaluator) evalRange(env *Environment, r *ast.RangeExpr) (types.Value, error) {
	lo, err := ev.eval(env, r.Low)
	if err != nil {
		return nil, err
	}
	hi, err := ev.eval(env, r.High)
	if err != nil {
		return nil, err
	}
	loN, ok1 := lo.(types.NumberValue)
	hiN, ok2 := hi.(types.NumberValue)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("range bounds must be numbers")
	}
	return types.RangeValue{Lo: loN.V, Hi: hiN.V}, nil
}

func (ev *Evaluator) evalIf(env *Environment, f *ast.IfExpr) (types.Value, error) {
	condV, err := ev.eval(env, f.Cond)
	if err != nil {
		return nil, err
	}
	if m, ok := types.IsMissing(condV); ok {
		return m, nil
	}
	b, ok := condV.(types.BooleanValue)
	if !ok {
		return nil, fmt.Errorf("if condition must be boolean, got %s", condV.Kind())
	}
	if b.V {
		return ev.eval(env, f.Then)
	}
	return ev.eval(env, f.Else)
}

func (ev *Evaluator) evalFor(env *Environment, f *ast.ForExpr) (types.Value, error) {
	srcV, err := ev.eval(env, f.Source)
	if err != nil {
		return nil, err
	}
	if m, ok := types.IsMissing(srcV); ok {
		return m, nil
	}
	list, ok := srcV.(types.ListValue)
	if !ok {
		return nil, fmt.Errorf("for source must be a list, got %s", srcV.Kind())
	}
	results := make([]types.Value, 0, len(list.Elements))
	for _, elv := range list.Elements {
		ev.pushLocal(f.Var, elv)
		bv, berr := ev.eval(env, f.Body)
		ev.popLocal()
		if berr != nil {
			return nil, berr
		}
		results = append(results, bv)
	}
	elemType := f.Body.LinkedType()
	return types.ListValue{Elements: results, ElemType: elemType}, nil
}

func (ev *Evaluator) evalList(env *Environment, lit *ast.ListLiteral) (types.Value, error) {
	elems := make([]types.Value, 0, len(lit.Elements))
	for _, e := range lit.Elements {
		v, err := ev.eval(env, e)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	elemType := types.Any
	if lit.LinkedType().Elem != nil {
		elemType = *lit.LinkedType().Elem
	}
	return types.ListValue{Elements: elems, ElemType: elemType}, nil
}

func (ev *Evaluator) evalCast(env *Environment, c *ast.CastExpr) (types.Value, error) {
	valV, err := ev.eval(env, c.Value)
	if err != nil {
		return nil, err
	}
	if m, ok := types.IsMissing(valV); ok {
		return m, nil
	}
	obj, ok := valV.(types.ObjectValue)
	if !ok {
		return nil, fmt.Errorf("cannot cast %s to %s", valV.Kind(), c.TypeName)
	}
	ut := c.ResolvedType
	defaultsEnv := ev.findTypeDeclEnv(env, ut)

	out := types.ObjectValue{}
	for _, tf := range ut.Fields {
		if v, ok := obj.Get(tf.Name); ok {
			out.Fields = append(out.Fields, types.FieldValue{Name: tf.Name, Value: v})
			continue
		}
		if tf.Default != nil {
			dv, derr := ev.eval(defaultsEnv, tf.Default)
			if derr != nil {
				return nil, derr
			}
			out.Fields = append(out.Fields, types.FieldValue{Name: tf.Name, Value: dv})
			continue
		}
		out.Fields = append(out.Fields, types.FieldValue{Name: tf.Name, Value: types.NewMissing(tf.Name)})
	}
	return out, nil
}

// findTypeDeclEnv locates the Environment for the context object that
// declared ut, so a default-value expression can resolve sibling
// field references the way the linker checked them.
func (ev *Evaluator) findTypeDeclEnv(env *Environment, ut *ast.UserType) *Environment {
	for e := env; e != nil; e = e.Parent {
		for _, t := range e.Ctx.Types {
			if t == ut {
				return e
			}
		}
	}
	return env
}

func (ev *Evaluator) evalFilter(env *Environment, fe *ast.FilterExpr) (types.Value, error) {
	baseV, err := ev.eval(env, fe.Base)
	if err != nil {
		return nil, err
	}
	if m, ok := types.IsMissing(baseV); ok {
		return m, nil
	}
	list, ok := baseV.(types.ListValue)
	if !ok {
		return nil, fmt.Errorf("cannot filter %s", baseV.Kind())
	}

	switch fe.Kind {
	case ast.FilterIndex:
		selV, err := ev.eval(env, fe.Selector)
		if err != nil {
			return nil, err
		}
		n, ok := selV.(types.NumberValue)
		if !ok {
			return nil, fmt.Errorf("filter index must be a number, got %s", selV.Kind())
		}
		idx := n.V.IntPart()
		if idx < 0 || int(idx) >= len(list.Elements) {
			return types.NewMissing("N/A"), nil
		}
		return list.Elements[idx], nil

	case ast.FilterRange:
		loV, err := ev.eval(env, fe.Low)
		if err != nil {
			return nil, err
		}
		hiV, err := ev.eval(env, fe.High)
		if err != nil {
			return nil, err
		}
		loN, ok1 := loV.(types.NumberValue)
		hiN, ok2 := hiV.(types.NumberValue)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("filter range bounds must be numbers")
		}
		lo := clampIndex(loN.V.IntPart(), len(list.Elements))
		hi := clampIndex(hiN.V.IntPart(), len(list.Elements))
		if hi < lo {
			hi = lo
		}
		sub := append([]types.Value{}, list.Elements[lo:hi]...)
		return types.ListValue{Elements: sub, ElemType: list.ElemType}, nil

	case ast.FilterPredicate:
		var kept []types.Value
		for _, el := range list.Elements {
			ev.pushLocal("", el)
			keepV, kerr := ev.eval(env, fe.Selector)
			ev.popLocal()
			if kerr != nil {
				return nil, kerr
			}
			if b, ok := keepV.(types.BooleanValue); ok && b.V {
				kept = append(kept, el)
			}
		}
		return types.ListValue{Elements: kept, ElemType: list.ElemType}, nil

	default:
		return nil, fmt.Errorf("unresolved filter expression")
	}
}

func clampIndex(i int64, n int) int {
	if i < 0 {
		i = 0
	}
	if int(i) > n {
		i = int64(n)
	}
	return int(i)
}

func (ev *Evaluator) evalCall(env *Environment, call *ast.CallExpr) (types.Value, error) {
	if call.Ref != nil {
		node := call.Ref.(*linker.LinkedNode)
		switch node.Kind {
		case linker.RefBuiltinCall:
			return ev.callBuiltin(env, node.Name, call.Args)
		case linker.RefUserFunctionCall:
			return ev.callUserFunction(env, node.Function, call.Args)
		}
	}
	calleeV, err := ev.eval(env, call.Callee)
	if err != nil {
		return nil, err
	}
	fv, ok := calleeV.(types.FunctionValue)
	if !ok {
		return nil, fmt.Errorf("cannot call a %s value", calleeV.Kind())
	}
	binding, found := ev.registry[fv.Name]
	if !found {
		return nil, fmt.Errorf("function '%s' is not reachable for indirect call", fv.Name)
	}
	return ev.invoke(env, binding.fn, binding.owner, call.Args)
}

func (ev *Evaluator) callBuiltin(env *Environment, name string, argExprs []ast.Expression) (types.Value, error) {
	args := make([]types.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := ev.eval(env, a)
		if err != nil {
			return nil, err
		}
		if m, ok := types.IsMissing(v); ok {
			return m, nil
		}
		args[i] = v
	}
	fn, ok := builtinFuncs[name]
	if !ok {
		return nil, fmt.Errorf("unknown built-in '%s'", name)
	}
	return fn(args)
}

func (ev *Evaluator) callUserFunction(env *Environment, fn *ast.UserFunction, argExprs []ast.Expression) (types.Value, error) {
	owner := env.findEnv(fn.Body.Parent)
	if owner == nil {
		owner = env
	}
	return ev.invoke(env, fn, owner, argExprs)
}

func (ev *Evaluator) invoke(callerEnv *Environment, fn *ast.UserFunction, owner *Environment, argExprs []ast.Expression) (types.Value, error) {
	args := make([]types.Value, len(argExprs))
	for i, a := range argExprs {
		v, err := ev.eval(callerEnv, a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return ev.CallFunction(fn, owner, args)
}
