package lambda

// Stock combinators used by the experiment drivers and tests.

// Identity returns the identity combinator \x.x.
func Identity() *Term {
	return Abs(Var(1))
}

// Church returns the Church numeral for n: \f.\x. f (f ... (f x)).
func Church(n int) *Term {
	body := Var(1)
	for i := 0; i < n; i++ {
		body = App(Var(2), body)
	}
	return Abs(Abs(body))
}

// Succ returns the Church successor \n.\f.\x. f (n f x).
func Succ() *Term {
	return Abs(Abs(Abs(
		App(Var(2), Apply(Var(3), Var(2), Var(1))),
	)))
}

// Add returns Church addition \m.\n.\f.\x. m f (n f x).
func Add() *Term {
	return Abs(Abs(Abs(Abs(
		Apply(Var(4), Var(2), Apply(Var(3), Var(2), Var(1))),
	))))
}
