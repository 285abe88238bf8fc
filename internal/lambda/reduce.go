package lambda

// Reduce performs normal-order (leftmost-outermost) beta reduction on t,
// bounded by limit contractions, and returns the reduced term together
// with the number of contractions performed.
//
// The step count IS the failure signal: steps == limit means the budget
// was exhausted and the returned term may not be in normal form. Callers
// must treat that case as reduction failure and never rely on the
// partially reduced result.
//
// Normal order contracts the leftmost-outermost redex first and reduces
// under abstractions, so it reaches the normal form whenever one exists
// within the budget.
func Reduce(t *Term, limit int) (*Term, int) {
	steps := 0
	for steps < limit {
		next, reduced := step(t)
		if !reduced {
			return t, steps
		}
		t = next
		steps++
	}
	return t, steps
}

// step contracts the leftmost-outermost redex, if any.
func step(t *Term) (*Term, bool) {
	switch t.kind {
	case KindVar:
		return t, false
	case KindAbs:
		body, ok := step(t.body)
		if !ok {
			return t, false
		}
		return Abs(body), true
	default:
		if t.fn.kind == KindAbs {
			return beta(t.fn.body, t.arg), true
		}
		if fn, ok := step(t.fn); ok {
			return App(fn, t.arg), true
		}
		if arg, ok := step(t.arg); ok {
			return App(t.fn, arg), true
		}
		return t, false
	}
}

// beta substitutes arg for the variable bound by the eliminated binder.
func beta(body, arg *Term) *Term {
	return subst(body, arg, 1)
}

// subst replaces Var(j) in t with v, decrementing variables that pointed
// past the eliminated binder. v is shifted on insertion so its free
// variables keep referring to the same outer binders.
func subst(t, v *Term, j int) *Term {
	switch t.kind {
	case KindVar:
		switch {
		case t.idx == j:
			return shift(v, j-1, 0)
		case t.idx > j:
			return Var(t.idx - 1)
		default:
			return t
		}
	case KindAbs:
		return Abs(subst(t.body, v, j+1))
	default:
		return App(subst(t.fn, v, j), subst(t.arg, v, j))
	}
}

// shift adds d to every variable in t whose index exceeds cutoff.
func shift(t *Term, d, cutoff int) *Term {
	if d == 0 {
		return t
	}
	switch t.kind {
	case KindVar:
		if t.idx > cutoff {
			return Var(t.idx + d)
		}
		return t
	case KindAbs:
		return Abs(shift(t.body, d, cutoff+1))
	default:
		return App(shift(t.fn, d, cutoff), shift(t.arg, d, cutoff))
	}
}
