package linker

import (
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

const (
	stateWhite = 0
	stateGray  = 1
	stateBlack = 2
)

type localVar struct {
	name string
	typ  types.Type
}

// Linker runs the combined schema-inference and reference-resolution
// pass over a context object tree (spec.md §4.3). A single pass is
// sufficient here because types are inferred lazily, on first use,
// with cycle detection standing in for a strict two-phase schedule.
type Linker struct {
	owner  map[*ast.ContextObject]*ast.UserFunction
	state  map[*ast.ContextObject]map[string]int
	cache  map[*ast.ContextObject]map[string]types.Type
	linked map[*ast.ContextObject]bool
	locals []localVar
	path   []string
	errors []*LinkError
}

// Link resolves and type-checks every field, function, and user type
// reachable from root, attaching linked types and references to the
// AST in place. It always returns root; callers must check the
// returned error slice for failures.
func Link(root *ast.ContextObject) (*ast.ContextObject, []*LinkError) {
	l := &Linker{
		owner:  map[*ast.ContextObject]*ast.UserFunction{},
		state:  map[*ast.ContextObject]map[string]int{},
		cache:  map[*ast.ContextObject]map[string]types.Type{},
		linked: map[*ast.ContextObject]bool{},
	}
	l.linkContext(root)
	return root, l.errors
}

func (l *Linker) pushLocal(name string, t types.Type) { l.locals = append(l.locals, localVar{name, t}) }
func (l *Linker) popLocal()                           { l.locals = l.locals[:len(l.locals)-1] }

func isWild(t types.Type) bool { return t.Kind == types.KindAny || t.Kind == types.KindUnresolved }

func normalizeWild(t types.Type) types.Type {
	if t.Kind == types.KindUnresolved {
		return types.Any
	}
	return t
}

func schemaOf(t types.Type) *types.Schema {
	if t.Kind == types.KindObject || t.Kind == types.KindUserType {
		return t.Schema
	}
	return nil
}

// linkContext type-checks every function body, user-type default, and
// field of ctx, then builds ctx.Schema from the results. Safe to call
// more than once; subsequent calls are no-ops.
func (l *Linker) linkContext(ctx *ast.ContextObject) {
	if l.linked[ctx] {
		return
	}
	l.linked[ctx] = true

	for _, fn := range ctx.Functions {
		l.owner[fn.Body] = fn
		l.linkContext(fn.Body)
	}
	for _, ut := range ctx.Types {
		l.checkUserTypeDefaults(ctx, ut)
	}
	for i := range ctx.Fields {
		l.typeOfField(ctx, ctx.Fields[i].Name)
	}

	fields := make([]types.Field, 0, len(ctx.Fields))
	for _, f := range ctx.Fields {
		t := l.cache[ctx][f.Name]
		fields = append(fields, types.Field{Name: f.Name, Type: t})
	}
	ctx.Schema = types.NewSchema(fields...)
}

func (l *Linker) checkUserTypeDefaults(ctx *ast.ContextObject, ut *ast.UserType) {
	for _, tf := range ut.Fields {
		if tf.Default == nil {
			continue
		}
		got, err := l.inferExpr(ctx, tf.Default)
		if err != nil {
			continue
		}
		if !isWild(got) && !got.Equals(tf.Type) {
			l.errors = append(l.errors, defaultMismatchErr(l.path, ast.Text(tf.Default), tf.Name, got, tf.Type))
		}
	}
}

// typeOfField computes (memoized) the static type of ctx.<name>,
// detecting cyclic dependencies via a white/gray/black coloring of
// (ctx,name) pairs (spec.md §4.3 "CyclicReference").
func (l *Linker) typeOfField(ctx *ast.ContextObject, name string) (types.Type, error) {
	if l.cache[ctx] == nil {
		l.cache[ctx] = map[string]types.Type{}
	}
	if t, ok := l.cache[ctx][name]; ok {
		return t, nil
	}
	if l.state[ctx] == nil {
		l.state[ctx] = map[string]int{}
	}
	idx := ctx.FieldIndex(name)
	if idx < 0 {
		err := fieldNotFoundErr(l.path, name, "<scope>", name)
		l.errors = append(l.errors, err)
		l.cache[ctx][name] = types.Unresolved
		return types.Unresolved, err
	}
	if l.state[ctx][name] == stateGray {
		err := cyclicErr(l.path, name, name)
		l.errors = append(l.errors, err)
		l.cache[ctx][name] = types.Unresolved
		l.state[ctx][name] = stateBlack
		return types.Unresolved, err
	}

	l.state[ctx][name] = stateGray
	l.path = append(l.path, name)
	t, err := l.inferExpr(ctx, ctx.Fields[idx].Expr)
	l.path = l.path[:len(l.path)-1]
	l.state[ctx][name] = stateBlack

	if err != nil {
		l.cache[ctx][name] = types.Unresolved
		return types.Unresolved, err
	}
	ctx.Fields[idx].Expr.SetLinkedType(t)
	l.cache[ctx][name] = t
	return t, nil
}

// resolveName implements the identifier lookup order: nearest `for`
// loop binding, then the field/parameter/function of the innermost
// enclosing context, walking up the Parent chain.
func (l *Linker) resolveName(ctx *ast.ContextObject, name string) (types.Type, *LinkedNode, error) {
	for i := len(l.locals) - 1; i >= 0; i-- {
		if l.locals[i].name == name {
			return l.locals[i].typ, nil, nil
		}
	}
	for cur := ctx; cur != nil; cur = cur.Parent {
		if idx := cur.FieldIndex(name); idx >= 0 {
			t, err := l.typeOfField(cur, name)
			return t, &LinkedNode{Kind: RefField, Owner: cur, Name: name}, err
		}
		if fn, ok := l.owner[cur]; ok {
			for pi, p := range fn.Params {
				if p.Name != name {
					continue
				}
				t := p.Declared
				if !p.HasDeclared {
					t = types.Any
				}
				return t, &LinkedNode{Kind: RefParam, Owner: cur, Name: name, ParamIndex: pi, Function: fn}, nil
			}
		}
		if fn, ok := cur.Function(name); ok {
			return types.Function(paramTypes(fn), functionResultType(l, fn)), &LinkedNode{Kind: RefFunctionValue, Owner: cur, Name: name, Function: fn}, nil
		}
	}
	err := fieldNotFoundErr(l.path, name, "<scope>", name)
	l.errors = append(l.errors, err)
	return types.Unresolved, nil, err
}

func paramTypes(fn *ast.UserFunction) []types.Type {
	out := make([]types.Type, len(fn.Params))
	for i, p := range fn.Params {
		if p.HasDeclared {
			out[i] = p.Declared
		} else {
			out[i] = types.Any
		}
	}
	return out
}

func functionResultType(l *Linker, fn *ast.UserFunction) types.Type {
	if idx := fn.Body.FieldIndex("return"); idx >= 0 {
		if t, ok := l.cache[fn.Body]["return"]; ok {
			return t
		}
	}
	return fn.Body.ToSchema()
}

func (l *Linker) lookupUserType(ctx *ast.ContextObject, name string) (*ast.UserType, bool) {
	for cur := ctx; cur != nil; cur = cur.Parent {
		if ut, ok := cur.UserTypeByName(name); ok {
			return ut, true
		}
	}
	return nil, false
}

func (l *Linker) lookupFunction(ctx *ast.ContextObject, name string) (*ast.UserFunction, bool) {
	for cur := ctx; cur != nil; cur = cur.Parent {
		if fn, ok := cur.Function(name); ok {
			return fn, true
		}
	}
	return nil, false
}

// inferExpr is the type-checking half of linking: it both returns the
// expression's static type and attaches it via SetLinkedType, and
// resolves identifier/call references onto the AST as it goes.
func (l *Linker) inferExpr(ctx *ast.ContextObject, expr ast.Expression) (types.Type, error) {
	var t types.Type
	var err error

	switch e := expr.(type) {
	case *ast.NumberLiteral:
		t = types.Number
	case *ast.StringLiteral:
		t = types.String
	case *ast.BooleanLiteral:
		t = types.Boolean
	case *ast.PlaceholderExpr:
		t, err = l.inferPlaceholder(ctx, e)
	case *ast.Identifier:
		var node *LinkedNode
		t, node, err = l.resolveName(ctx, e.Name)
		e.Ref = node
	case *ast.WildcardExpr:
		if len(l.locals) == 0 {
			lerr := unsupportedCastErr(l.path, "it", "'it'/'...' used outside a filter or comprehension")
			l.errors = append(l.errors, lerr)
			return types.Unresolved, lerr
		}
		t = l.locals[len(l.locals)-1].typ
	case *ast.PathAccess:
		t, err = l.inferPathAccess(ctx, e)
	case *ast.UnaryExpr:
		t, err = l.inferUnary(ctx, e)
	case *ast.BinaryExpr:
		t, err = l.inferBinary(ctx, e)
	case *ast.RangeExpr:
		t, err = l.inferRange(ctx, e)
	case *ast.IfExpr:
		t, err = l.inferIf(ctx, e)
	case *ast.ForExpr:
		t, err = l.inferFor(ctx, e)
	case *ast.ListLiteral:
		t, err = l.inferList(ctx, e)
	case *ast.ObjectLiteral:
		l.linkContext(e.Context)
		t = e.Context.ToSchema()
	case *ast.CastExpr:
		t, err = l.inferCast(ctx, e)
	case *ast.FilterExpr:
		t, err = l.inferFilter(ctx, e)
	case *ast.CallExpr:
		t, err = l.inferCall(ctx, e)
	default:
		t = types.Unresolved
	}

	if err == nil {
		expr.SetLinkedType(t)
	}
	return t, err
}

func (l *Linker) inferPlaceholder(ctx *ast.ContextObject, ph *ast.PlaceholderExpr) (types.Type, error) {
	base := ph.TypeName
	depth := 0
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSuffix(base, "[]")
		depth++
	}
	t, ok := types.ParseTypeName(base)
	if !ok {
		if ut, found := l.lookupUserType(ctx, base); found {
			t, ok = types.UserTypeOf(ut.Name, ut.Schema()), true
		}
	}
	if !ok {
		err := unsupportedCastErr(l.path, ph.String(), "unknown type '"+base+"'")
		l.errors = append(l.errors, err)
		return types.Unresolved, err
	}
	for i := 0; i < depth; i++ {
		t = types.List(t)
	}
	return t, nil
}

func (l *Linker) inferPathAccess(ctx *ast.ContextObject, p *ast.PathAccess) (types.Type, error) {
	baseT, err := l.inferExpr(ctx, p.Base)
	if err != nil {
		return types.Unresolved, err
	}
	if isWild(baseT) {
		return types.Any, nil
	}
	schema := schemaOf(baseT)
	if schema == nil {
		e := typesNotCompatibleErr(l.path, ast.Text(p), "path access on "+p.Base.String(), baseT, []types.Type{types.Object(nil)})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	t, ok := schema.Lookup(p.Segment)
	if !ok {
		e := fieldNotFoundErr(l.path, ast.Text(p), p.Base.String(), p.Segment)
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	return t, nil
}

func (l *Linker) inferUnary(ctx *ast.ContextObject, u *ast.UnaryExpr) (types.Type, error) {
	ot, err := l.inferExpr(ctx, u.Operand)
	if err != nil {
		return types.Unresolved, err
	}
	res, ok := unaryResultType(u.Op, normalizeWild(ot))
	if !ok {
		e := typesNotCompatibleErr(l.path, ast.Text(u), "operator '"+u.Op+"'", ot, []types.Type{types.Number, types.Boolean})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	return res, nil
}

func (l *Linker) inferBinary(ctx *ast.ContextObject, b *ast.BinaryExpr) (types.Type, error) {
	lt, lerr := l.inferExpr(ctx, b.Left)
	if lerr != nil {
		return types.Unresolved, lerr
	}
	rt, rerr := l.inferExpr(ctx, b.Right)
	if rerr != nil {
		return types.Unresolved, rerr
	}
	res, ok := binaryResultType(b.Op, normalizeWild(lt), normalizeWild(rt))
	if !ok {
		e := typesNotCompatibleErr(l.path, ast.Text(b), "operator '"+b.Op+"'", lt, []types.Type{rt})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	return res, nil
}

func (l *Linker) inferRange(ctx *ast.ContextObject, r *ast.RangeExpr) (types.Type, error) {
	lo, lerr := l.inferExpr(ctx, r.Low)
	if lerr != nil {
		return types.Unresolved, lerr
	}
	hi, herr := l.inferExpr(ctx, r.High)
	if herr != nil {
		return types.Unresolved, herr
	}
	if !isWild(lo) && lo.Kind != types.KindNumber {
		e := typesNotCompatibleErr(l.path, ast.Text(r), "range low bound", lo, []types.Type{types.Number})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	if !isWild(hi) && hi.Kind != types.KindNumber {
		e := typesNotCompatibleErr(l.path, ast.Text(r), "range high bound", hi, []types.Type{types.Number})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	return types.Range, nil
}

func (l *Linker) inferIf(ctx *ast.ContextObject, f *ast.IfExpr) (types.Type, error) {
	condT, cerr := l.inferExpr(ctx, f.Cond)
	if cerr != nil {
		return types.Unresolved, cerr
	}
	if !isWild(condT) && condT.Kind != types.KindBoolean {
		e := typesNotCompatibleErr(l.path, ast.Text(f), "if condition", condT, []types.Type{types.Boolean})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	thenT, terr := l.inferExpr(ctx, f.Then)
	if terr != nil {
		return types.Unresolved, terr
	}
	elseT, eerr := l.inferExpr(ctx, f.Else)
	if eerr != nil {
		return types.Unresolved, eerr
	}
	if isWild(thenT) {
		return elseT, nil
	}
	if isWild(elseT) {
		return thenT, nil
	}
	if !thenT.Equals(elseT) {
		e := typesNotCompatibleErr(l.path, ast.Text(f), "if branches", thenT, []types.Type{elseT})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	return thenT, nil
}

func (l *Linker) inferFor(ctx *ast.ContextObject, f *ast.ForExpr) (types.Type, error) {
	srcT, err := l.inferExpr(ctx, f.Source)
	if err != nil {
		return types.Unresolved, err
	}
	if !isWild(srcT) && srcT.Kind != types.KindList {
		e := typesNotCompatibleErr(l.path, ast.Text(f), "for source", srcT, []types.Type{types.List(types.Any)})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	elem := types.Any
	if srcT.Kind == types.KindList && srcT.Elem != nil {
		elem = *srcT.Elem
	}
	l.pushLocal(f.Var, elem)
	bodyT, berr := l.inferExpr(ctx, f.Body)
	l.popLocal()
	if berr != nil {
		return types.Unresolved, berr
	}
	return types.List(bodyT), nil
}

func (l *Linker) inferList(ctx *ast.ContextObject, lit *ast.ListLiteral) (types.Type, error) {
	if len(lit.Elements) == 0 {
		return types.List(types.Any), nil
	}
	var elem types.Type
	for i, e := range lit.Elements {
		t, err := l.inferExpr(ctx, e)
		if err != nil {
			return types.Unresolved, err
		}
		if i == 0 || isWild(elem) {
			elem = t
			continue
		}
		if !isWild(t) && !elem.Equals(t) {
			le := typesNotCompatibleErr(l.path, ast.Text(lit), "list element", t, []types.Type{elem})
			l.errors = append(l.errors, le)
			return types.Unresolved, le
		}
	}
	return types.List(elem), nil
}

func (l *Linker) inferCast(ctx *ast.ContextObject, c *ast.CastExpr) (types.Type, error) {
	valT, err := l.inferExpr(ctx, c.Value)
	if err != nil {
		return types.Unresolved, err
	}
	ut, found := l.lookupUserType(ctx, c.TypeName)
	if !found {
		e := unsupportedCastErr(l.path, ast.Text(c), "unknown type '"+c.TypeName+"'")
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	c.ResolvedType = ut
	if !isWild(valT) && valT.Kind != types.KindObject && valT.Kind != types.KindUserType {
		e := unsupportedCastErr(l.path, ast.Text(c), "cannot cast "+valT.String()+" to "+ut.Name)
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	if valT.Schema != nil {
		for _, lf := range valT.Schema.Fields {
			want, ok := ut.Schema().Lookup(lf.Name)
			if ok && !isWild(lf.Type) && !lf.Type.Equals(want) {
				e := typesNotCompatibleErr(l.path, ast.Text(c), "cast field '"+lf.Name+"'", lf.Type, []types.Type{want})
				l.errors = append(l.errors, e)
			}
		}
	}
	return types.UserTypeOf(ut.Name, ut.Schema()), nil
}

func (l *Linker) inferFilter(ctx *ast.ContextObject, fe *ast.FilterExpr) (types.Type, error) {
	baseT, err := l.inferExpr(ctx, fe.Base)
	if err != nil {
		return types.Unresolved, err
	}
	if !isWild(baseT) && baseT.Kind != types.KindList {
		e := typesNotCompatibleErr(l.path, ast.Text(fe), "filter base", baseT, []types.Type{types.List(types.Any)})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	elem := types.Any
	if baseT.Kind == types.KindList && baseT.Elem != nil {
		elem = *baseT.Elem
	}

	switch fe.Kind {
	case ast.FilterRange:
		if _, err := l.inferExpr(ctx, fe.Low); err != nil {
			return types.Unresolved, err
		}
		if _, err := l.inferExpr(ctx, fe.High); err != nil {
			return types.Unresolved, err
		}
		return baseT, nil
	case ast.FilterUnresolved:
		l.pushLocal("", elem)
		selT, serr := l.inferExpr(ctx, fe.Selector)
		l.popLocal()
		if serr != nil {
			fe.Kind = ast.FilterPredicate
			return types.Unresolved, serr
		}
		switch selT.Kind {
		case types.KindNumber:
			fe.Kind = ast.FilterIndex
			return elem, nil
		case types.KindBoolean, types.KindAny:
			fe.Kind = ast.FilterPredicate
			return baseT, nil
		default:
			e := typesNotCompatibleErr(l.path, ast.Text(fe), "filter selector", selT, []types.Type{types.Number, types.Boolean})
			l.errors = append(l.errors, e)
			fe.Kind = ast.FilterPredicate
			return types.Unresolved, e
		}
	default:
		return baseT, nil
	}
}

func (l *Linker) inferCall(ctx *ast.ContextObject, call *ast.CallExpr) (types.Type, error) {
	if ident, ok := call.Callee.(*ast.Identifier); ok {
		if fn, found := l.lookupFunction(ctx, ident.Name); found {
			return l.checkUserCall(ctx, call, fn)
		}
		if sig, found := builtins[ident.Name]; found {
			return l.checkBuiltinCall(ctx, call, ident.Name, sig)
		}
		// Not a declared function or built-in: fall through to the
		// generic path below, which resolves the identifier as any
		// other expression would (field, parameter, or for-loop local)
		// and, if it turns out to hold a Function value, calls it.
	}

	calleeT, err := l.inferExpr(ctx, call.Callee)
	if err != nil {
		return types.Unresolved, err
	}
	if !isWild(calleeT) && calleeT.Kind != types.KindFunction {
		e := typesNotCompatibleErr(l.path, ast.Text(call), "call target", calleeT, []types.Type{types.Function(nil, types.Any)})
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	if isWild(calleeT) {
		for _, a := range call.Args {
			l.inferExpr(ctx, a)
		}
		return types.Unresolved, nil
	}
	return l.checkCallArgs(ctx, call, "<function>", calleeT.Params, *calleeT.Result)
}

func (l *Linker) checkUserCall(ctx *ast.ContextObject, call *ast.CallExpr, fn *ast.UserFunction) (types.Type, error) {
	if len(call.Args) != len(fn.Params) {
		e := arityErr(l.path, ast.Text(call), fn.Name, len(call.Args), len(fn.Params))
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	for i, a := range call.Args {
		at, err := l.inferExpr(ctx, a)
		if err != nil {
			return types.Unresolved, err
		}
		p := fn.Params[i]
		if p.HasDeclared && !isWild(at) && !at.Equals(p.Declared) {
			e := invalidArgErr(l.path, ast.Text(call), fn.Name, i, at, p.Declared.String())
			l.errors = append(l.errors, e)
			return types.Unresolved, e
		}
	}
	call.Ref = &LinkedNode{Kind: RefUserFunctionCall, Name: fn.Name, Function: fn}
	return functionResultType(l, fn), nil
}

// checkCallArgs validates a call against an already-known Function
// type's signature, used for the higher-order case where Callee is
// not a bare identifier (e.g. a field holding a function value).
func (l *Linker) checkCallArgs(ctx *ast.ContextObject, call *ast.CallExpr, name string, params []types.Type, result types.Type) (types.Type, error) {
	if len(call.Args) != len(params) {
		e := arityErr(l.path, ast.Text(call), name, len(call.Args), len(params))
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	for i, a := range call.Args {
		at, err := l.inferExpr(ctx, a)
		if err != nil {
			return types.Unresolved, err
		}
		if !isWild(params[i]) && !isWild(at) && !at.Equals(params[i]) {
			e := invalidArgErr(l.path, ast.Text(call), name, i, at, params[i].String())
			l.errors = append(l.errors, e)
			return types.Unresolved, e
		}
	}
	return result, nil
}

func (l *Linker) checkBuiltinCall(ctx *ast.ContextObject, call *ast.CallExpr, name string, sig builtinSig) (types.Type, error) {
	if !arityOK(sig, len(call.Args)) {
		e := arityErr(l.path, ast.Text(call), name, len(call.Args), sig.minArgs)
		l.errors = append(l.errors, e)
		return types.Unresolved, e
	}
	argTypes := make([]types.Type, len(call.Args))
	for i, a := range call.Args {
		t, err := l.inferExpr(ctx, a)
		if err != nil {
			return types.Unresolved, err
		}
		argTypes[i] = t
	}
	res, err := sig.check(argTypes)
	if err != nil {
		le := unsupportedCastErr(l.path, ast.Text(call), err.Error())
		l.errors = append(l.errors, le)
		return types.Unresolved, le
	}
	call.Ref = &LinkedNode{Kind: RefBuiltinCall, Name: name}
	return res, nil
}
