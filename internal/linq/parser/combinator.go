package parser

import (
	"sync"

	"github.com/sinclairzx81/linqbox/internal/linq/scanner"
)

// Parser consumes tokens from the head of a stream. On success it returns
// the parsed value and the advanced stream; on failure the zero value, the
// stream it was given and false.
type Parser[T any] func(s scanner.Stream) (T, scanner.Stream, bool)

// Option is the result of ZeroOrOne.
type Option[T any] struct {
	Value T
	Ok    bool
}

// Pair is the result of Seq2.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the result of Seq3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Map transforms the value of a successful parse.
func Map[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	return func(s scanner.Stream) (U, scanner.Stream, bool) {
		v, next, ok := p(s)
		if !ok {
			var zero U
			return zero, s, false
		}
		return fn(v), next, true
	}
}

// Seq applies ps in order and collects their values. If any fails the
// whole sequence fails without consuming input.
func Seq[T any](ps ...Parser[T]) Parser[[]T] {
	return func(s scanner.Stream) ([]T, scanner.Stream, bool) {
		out := make([]T, 0, len(ps))
		cur := s
		for _, p := range ps {
			v, next, ok := p(cur)
			if !ok {
				return nil, s, false
			}
			out = append(out, v)
			cur = next
		}
		return out, cur, true
	}
}

// Seq2 applies a then b.
func Seq2[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(s scanner.Stream) (Pair[A, B], scanner.Stream, bool) {
		f := Begin(s)
		out := Pair[A, B]{First: Take(f, a), Second: Take(f, b)}
		next, ok := f.Done()
		if !ok {
			return Pair[A, B]{}, s, false
		}
		return out, next, true
	}
}

// Seq3 applies a, b then c.
func Seq3[A, B, C any](a Parser[A], b Parser[B], c Parser[C]) Parser[Triple[A, B, C]] {
	return func(s scanner.Stream) (Triple[A, B, C], scanner.Stream, bool) {
		f := Begin(s)
		out := Triple[A, B, C]{First: Take(f, a), Second: Take(f, b), Third: Take(f, c)}
		next, ok := f.Done()
		if !ok {
			return Triple[A, B, C]{}, s, false
		}
		return out, next, true
	}
}

// Any returns the result of the first alternative that succeeds. Each
// alternative runs against the same input.
func Any[T any](ps ...Parser[T]) Parser[T] {
	return func(s scanner.Stream) (T, scanner.Stream, bool) {
		for _, p := range ps {
			if v, next, ok := p(s); ok {
				return v, next, true
			}
		}
		var zero T
		return zero, s, false
	}
}

// ZeroOrOne always succeeds, reporting whether p matched.
func ZeroOrOne[T any](p Parser[T]) Parser[Option[T]] {
	return func(s scanner.Stream) (Option[T], scanner.Stream, bool) {
		if v, next, ok := p(s); ok {
			return Option[T]{Value: v, Ok: true}, next, true
		}
		return Option[T]{}, s, true
	}
}

// ZeroOrMore applies p until it fails and always succeeds.
func ZeroOrMore[T any](p Parser[T]) Parser[[]T] {
	return func(s scanner.Stream) ([]T, scanner.Stream, bool) {
		var out []T
		cur := s
		for {
			v, next, ok := p(cur)
			if !ok || next.Pos() == cur.Pos() {
				return out, cur, true
			}
			out = append(out, v)
			cur = next
		}
	}
}

// OneOrMore is ZeroOrMore that fails on zero matches.
func OneOrMore[T any](p Parser[T]) Parser[[]T] {
	many := ZeroOrMore(p)
	return func(s scanner.Stream) ([]T, scanner.Stream, bool) {
		out, next, _ := many(s)
		if len(out) == 0 {
			return nil, s, false
		}
		return out, next, true
	}
}

// Enclosed parses open inner end and keeps only inner.
func Enclosed[O, T, C any](open Parser[O], inner Parser[T], end Parser[C]) Parser[T] {
	return Map(Seq3(open, inner, end), func(t Triple[O, T, C]) T { return t.Second })
}

// Delimited parses one or more elements separated by sep, allowing a
// single trailing separator.
func Delimited[T, S any](element Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s scanner.Stream) ([]T, scanner.Stream, bool) {
		first, cur, ok := element(s)
		if !ok {
			return nil, s, false
		}
		out := []T{first}
		for {
			_, afterSep, ok := sep(cur)
			if !ok {
				return out, cur, true
			}
			v, next, ok := element(afterSep)
			if !ok {
				return out, afterSep, true
			}
			out = append(out, v)
			cur = next
		}
	}
}

// EnclosedDelimited parses open, zero or more delimited elements and end.
// An empty list and a trailing separator are both accepted.
func EnclosedDelimited[O, T, C, S any](open Parser[O], element Parser[T], end Parser[C], sep Parser[S]) Parser[[]T] {
	inner := Map(ZeroOrOne(Delimited(element, sep)), func(o Option[[]T]) []T {
		if !o.Ok {
			return []T{}
		}
		return o.Value
	})
	return Enclosed(open, inner, end)
}

// Lazy defers construction of p until first use, for recursive rules.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	var (
		once sync.Once
		p    Parser[T]
	)
	return func(s scanner.Stream) (T, scanner.Stream, bool) {
		once.Do(func() { p = build() })
		return p(s)
	}
}

// Token matches a single token satisfying pred.
func Token(pred func(scanner.Token) bool) Parser[scanner.Token] {
	return func(s scanner.Stream) (scanner.Token, scanner.Stream, bool) {
		tok, next, ok := s.Next()
		if !ok || !pred(tok) {
			return scanner.Token{}, s, false
		}
		return tok, next, true
	}
}

// Kind matches a token of kind k.
func Kind(k scanner.Kind) Parser[scanner.Token] {
	return Token(func(t scanner.Token) bool { return t.Kind == k })
}

// Keyword matches the reserved word text.
func Keyword(text string) Parser[scanner.Token] {
	return Token(func(t scanner.Token) bool { return t.Is(scanner.Keyword, text) })
}

// Contextual matches text spelled as either a word or a keyword, for words
// such as "on" that are only significant in one position.
func Contextual(text string) Parser[scanner.Token] {
	return Token(func(t scanner.Token) bool {
		return (t.Kind == scanner.Word || t.Kind == scanner.Keyword) && t.Text == text
	})
}

// Punct matches an operator spelled by consecutive single-character
// punctuation tokens, such as "===" or "...".
func Punct(text string) Parser[string] {
	return func(s scanner.Stream) (string, scanner.Stream, bool) {
		cur := s
		for _, r := range text {
			tok, next, ok := cur.Next()
			if !ok || tok.Kind == scanner.String || tok.Text != string(r) {
				return "", s, false
			}
			cur = next
		}
		return text, cur, true
	}
}

// Fork threads a stream through a run of heterogeneous parsers with the
// same all-or-nothing contract as Seq. After the first failure Take is a
// no-op and Done reports the stream the fork began with.
type Fork struct {
	origin scanner.Stream
	cur    scanner.Stream
	failed bool
}

// Begin starts a fork at s.
func Begin(s scanner.Stream) *Fork {
	return &Fork{origin: s, cur: s}
}

// Take applies p at the fork position.
func Take[T any](f *Fork, p Parser[T]) T {
	var zero T
	if f.failed {
		return zero
	}
	v, next, ok := p(f.cur)
	if !ok {
		f.failed = true
		return zero
	}
	f.cur = next
	return v
}

// Done returns the advanced stream and true, or the original stream and
// false if any Take failed.
func (f *Fork) Done() (scanner.Stream, bool) {
	if f.failed {
		return f.origin, false
	}
	return f.cur, true
}

// Failed reports whether a Take has failed.
func (f *Fork) Failed() bool { return f.failed }

// Check fails when p succeeds with a value rejected by accept.
func Check[T any](p Parser[T], accept func(T) bool) Parser[T] {
	return func(s scanner.Stream) (T, scanner.Stream, bool) {
		v, next, ok := p(s)
		if !ok || !accept(v) {
			var zero T
			return zero, s, false
		}
		return v, next, true
	}
}
