package lambda

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ParseError reports a syntax error with its byte offset in the input.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Message)
}

// Parse converts classic-notation text into a de Bruijn term.
//
// Accepted syntax:
//
//	term  = lambda | app
//	lambda = ("\" | "λ") ident+ "." term
//	app   = atom atom*            (left-associative)
//	atom  = ident | "(" term ")" | lambda
//
// "\x y. e" abbreviates "\x.\y. e". A lambda in atom position extends
// to the end of the enclosing term, so "f \x.x" applies f to the
// identity.
//
// Free variables are allowed: each distinct free name is assigned an
// index beyond the binder depth, in order of first appearance. The same
// name always denotes the same free slot regardless of the depth at
// which it occurs.
func Parse(text string) (*Term, error) {
	p := &parser{src: text}
	p.next()
	t, err := p.parseTerm(nil)
	if err != nil {
		return nil, err
	}
	if p.tok != tokEOF {
		return nil, p.errorf("unexpected %q after complete term", p.lit)
	}
	return t, nil
}

// MustParse is Parse that panics on error. For fixed combinators in
// tests and experiment definitions.
func MustParse(text string) *Term {
	t, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return t
}

type token int

const (
	tokEOF token = iota
	tokLambda
	tokDot
	tokLParen
	tokRParen
	tokIdent
)

type parser struct {
	src string
	pos int // start offset of current token
	off int // scan offset
	tok token
	lit string

	freeNames []string // distinct free names, first appearance first
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func isIdentRune(r rune, first bool) bool {
	if unicode.IsLetter(r) && r != 'λ' || r == '_' {
		return true
	}
	if first {
		return false
	}
	return unicode.IsDigit(r) || r == '\''
}

// next advances to the following token.
func (p *parser) next() {
	for p.off < len(p.src) && unicode.IsSpace(rune(p.src[p.off])) {
		p.off++
	}
	p.pos = p.off
	if p.off >= len(p.src) {
		p.tok, p.lit = tokEOF, ""
		return
	}
	switch r, w := utf8.DecodeRuneInString(p.src[p.off:]); {
	case r == '\\' || r == 'λ':
		p.off += w
		p.tok, p.lit = tokLambda, string(r)
	case r == '.':
		p.off++
		p.tok, p.lit = tokDot, "."
	case r == '(':
		p.off++
		p.tok, p.lit = tokLParen, "("
	case r == ')':
		p.off++
		p.tok, p.lit = tokRParen, ")"
	case isIdentRune(r, true):
		start := p.off
		for p.off < len(p.src) {
			r2, w2 := utf8.DecodeRuneInString(p.src[p.off:])
			if !isIdentRune(r2, false) {
				break
			}
			p.off += w2
		}
		p.tok, p.lit = tokIdent, p.src[start:p.off]
	default:
		p.tok, p.lit = tokEOF, string(r)
		p.off = len(p.src)
	}
}

// parseTerm parses a full term in the binder context ctx (innermost
// binder last).
func (p *parser) parseTerm(ctx []string) (*Term, error) {
	if p.tok == tokLambda {
		return p.parseLambda(ctx)
	}
	return p.parseApp(ctx)
}

func (p *parser) parseLambda(ctx []string) (*Term, error) {
	p.next() // consume lambda
	var binders []string
	for p.tok == tokIdent {
		binders = append(binders, p.lit)
		p.next()
	}
	if len(binders) == 0 {
		return nil, p.errorf("expected binder name after lambda")
	}
	if p.tok != tokDot {
		return nil, p.errorf("expected '.' after binders, found %q", p.lit)
	}
	p.next()
	body, err := p.parseTerm(append(ctx, binders...))
	if err != nil {
		return nil, err
	}
	for range binders {
		body = Abs(body)
	}
	return body, nil
}

func (p *parser) parseApp(ctx []string) (*Term, error) {
	var t *Term
	for {
		var atom *Term
		var err error
		switch p.tok {
		case tokIdent:
			atom = p.resolve(p.lit, ctx)
			p.next()
		case tokLParen:
			p.next()
			atom, err = p.parseTerm(ctx)
			if err != nil {
				return nil, err
			}
			if p.tok != tokRParen {
				return nil, p.errorf("expected ')', found %q", p.lit)
			}
			p.next()
		case tokLambda:
			// Trailing lambda swallows the rest of the term.
			atom, err = p.parseLambda(ctx)
			if err != nil {
				return nil, err
			}
		default:
			if t == nil {
				return nil, p.errorf("expected term, found %q", p.lit)
			}
			return t, nil
		}
		if t == nil {
			t = atom
		} else {
			t = App(t, atom)
		}
	}
}

// resolve maps a name to a de Bruijn index. Bound names resolve to
// their distance from the innermost binder; unknown names become free
// variables indexed past the current depth.
func (p *parser) resolve(name string, ctx []string) *Term {
	for i := len(ctx) - 1; i >= 0; i-- {
		if ctx[i] == name {
			return Var(len(ctx) - i)
		}
	}
	order := -1
	for i, n := range p.freeNames {
		if n == name {
			order = i
			break
		}
	}
	if order < 0 {
		order = len(p.freeNames)
		p.freeNames = append(p.freeNames, name)
	}
	return Var(len(ctx) + order + 1)
}

// ParseWithFreeNames is Parse, additionally returning the distinct
// free-variable names in assignment order. Used for diagnostics in the
// CLI's parse command.
func ParseWithFreeNames(text string) (*Term, []string, error) {
	p := &parser{src: text}
	p.next()
	t, err := p.parseTerm(nil)
	if err != nil {
		return nil, nil, err
	}
	if p.tok != tokEOF {
		return nil, nil, p.errorf("unexpected %q after complete term", p.lit)
	}
	return t, p.freeNames, nil
}
