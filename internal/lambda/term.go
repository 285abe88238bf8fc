// Package lambda implements the term engine for the alchemy simulator:
// de Bruijn-indexed lambda terms, a classic-notation parser, bounded
// normal-order reduction, and the structural predicates the reaction
// engine and statistics layer depend on.
//
// Terms are immutable after construction and share subtrees freely.
// Because indices are de Bruijn, structural equality coincides with
// alpha-equivalence; AlphaEq and map keys built from Key() therefore
// compare terms up to renaming of bound variables.
package lambda

import (
	"strconv"
	"strings"
)

// Kind discriminates the three term constructors.
type Kind uint8

const (
	KindVar Kind = iota + 1
	KindAbs
	KindApp
)

// Term is a lambda-calculus expression in de Bruijn form.
//
// Variable indices are 1-based: Var(1) refers to the innermost enclosing
// binder, Var(2) to the next one out, and so on. An index greater than
// the number of enclosing binders denotes a free variable.
//
// INVARIANT: a Term is never mutated after construction. Reduction and
// substitution always build new nodes and may share unchanged subtrees.
type Term struct {
	kind Kind
	idx  int   // KindVar
	body *Term // KindAbs
	fn   *Term // KindApp
	arg  *Term // KindApp
}

// Var constructs a variable with the given 1-based de Bruijn index.
// Panics on idx < 1: a zero or negative index is always a caller bug.
func Var(idx int) *Term {
	if idx < 1 {
		panic("lambda: variable index must be >= 1")
	}
	return &Term{kind: KindVar, idx: idx}
}

// Abs constructs an abstraction over body.
func Abs(body *Term) *Term {
	return &Term{kind: KindAbs, body: body}
}

// App constructs the application of fn to arg.
func App(fn, arg *Term) *Term {
	return &Term{kind: KindApp, fn: fn, arg: arg}
}

// Apply folds App over a sequence of arguments, left-associatively:
// Apply(f, a, b) is ((f a) b).
func Apply(fn *Term, args ...*Term) *Term {
	t := fn
	for _, a := range args {
		t = App(t, a)
	}
	return t
}

// Kind returns the constructor of the root node.
func (t *Term) Kind() Kind { return t.kind }

// Index returns the de Bruijn index of a variable node.
func (t *Term) Index() int { return t.idx }

// Body returns the body of an abstraction node.
func (t *Term) Body() *Term { return t.body }

// Fn returns the function position of an application node.
func (t *Term) Fn() *Term { return t.fn }

// Arg returns the argument position of an application node.
func (t *Term) Arg() *Term { return t.arg }

// AlphaEq reports whether a and b are alpha-equivalent. On de Bruijn
// terms this is plain structural equality; eta-equivalence is NOT
// considered.
func AlphaEq(a, b *Term) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindVar:
		return a.idx == b.idx
	case KindAbs:
		return AlphaEq(a.body, b.body)
	default:
		return AlphaEq(a.fn, b.fn) && AlphaEq(a.arg, b.arg)
	}
}

// Key returns a canonical string encoding of t, suitable as a map key.
// Two terms have equal keys iff they are alpha-equivalent.
func (t *Term) Key() string {
	var sb strings.Builder
	t.writeKey(&sb)
	return sb.String()
}

func (t *Term) writeKey(sb *strings.Builder) {
	switch t.kind {
	case KindVar:
		sb.WriteString(strconv.Itoa(t.idx))
	case KindAbs:
		sb.WriteByte('\\')
		t.body.writeKey(sb)
	default:
		sb.WriteByte('(')
		t.fn.writeKey(sb)
		sb.WriteByte(' ')
		t.arg.writeKey(sb)
		sb.WriteByte(')')
	}
}

// MaxDepth returns the maximum nesting depth of t: 1 for a variable,
// one more than the body for an abstraction, one more than the deeper
// side for an application. Used as the size metric in reaction
// outcomes.
func (t *Term) MaxDepth() int {
	switch t.kind {
	case KindVar:
		return 1
	case KindAbs:
		return 1 + t.body.MaxDepth()
	default:
		fd, ad := t.fn.MaxDepth(), t.arg.MaxDepth()
		if ad > fd {
			fd = ad
		}
		return 1 + fd
	}
}

// NumNodes returns the number of AST nodes in t.
func (t *Term) NumNodes() int {
	switch t.kind {
	case KindVar:
		return 1
	case KindAbs:
		return 1 + t.body.NumNodes()
	default:
		return 1 + t.fn.NumNodes() + t.arg.NumNodes()
	}
}

// HasFreeVariables reports whether t contains any variable whose index
// escapes every enclosing binder.
func (t *Term) HasFreeVariables() bool {
	return t.hasFreeAbove(0)
}

func (t *Term) hasFreeAbove(depth int) bool {
	switch t.kind {
	case KindVar:
		return t.idx > depth
	case KindAbs:
		return t.body.hasFreeAbove(depth + 1)
	default:
		return t.fn.hasFreeAbove(depth) || t.arg.hasFreeAbove(depth)
	}
}

// IsRecursive reports whether t contains a self-application: an
// application node whose function and argument are alpha-equivalent.
// This is the motif detector used by the statistics layer to spot
// fixed-point-style expressions; it plays no role in collision logic.
func (t *Term) IsRecursive() bool {
	switch t.kind {
	case KindVar:
		return false
	case KindAbs:
		return t.body.IsRecursive()
	default:
		if AlphaEq(t.fn, t.arg) {
			return true
		}
		return t.fn.IsRecursive() || t.arg.IsRecursive()
	}
}

// String renders t in classic notation with synthetic binder names.
// Binders are named x1, x2, ... outside-in; a free variable with
// de Bruijn distance d beyond the outermost binder prints as fd.
// The rendering is deterministic and injective, so it is also a
// canonical form, just a more readable one than Key().
func (t *Term) String() string {
	var sb strings.Builder
	t.write(&sb, 0, false, false)
	return sb.String()
}

// write renders t at the given binder depth. fnPos and argPos control
// minimal parenthesization: abstractions parenthesize except at top
// level, applications parenthesize in argument position.
func (t *Term) write(sb *strings.Builder, depth int, fnPos, argPos bool) {
	switch t.kind {
	case KindVar:
		if t.idx <= depth {
			sb.WriteString("x" + strconv.Itoa(depth-t.idx+1))
		} else {
			sb.WriteString("f" + strconv.Itoa(t.idx-depth))
		}
	case KindAbs:
		paren := fnPos || argPos
		if paren {
			sb.WriteByte('(')
		}
		sb.WriteString("\\x" + strconv.Itoa(depth+1) + ".")
		t.body.write(sb, depth+1, false, false)
		if paren {
			sb.WriteByte(')')
		}
	default:
		if argPos {
			sb.WriteByte('(')
		}
		t.fn.write(sb, depth, true, false)
		sb.WriteByte(' ')
		t.arg.write(sb, depth, false, true)
		if argPos {
			sb.WriteByte(')')
		}
	}
}
