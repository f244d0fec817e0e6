package dice

import "strings"

const msgNumber = "tried to parse a number"

// Labels used in diagnostics for character classes and end of input.
const (
	labelDigit = "digit"
	labelEnd   = "end of input"
)

// parser is a backtracking recursive-descent parser over a cursor.
//
// Every failed expectation is merged into furthest, including failures inside
// optional parts that the grammar recovers from. When the parse finally fails,
// furthest names the deepest position reached and everything that would have
// been accepted there.
type parser struct {
	cur      cursor
	advanced bool
	furthest Diagnostics

	// groups memoizes '(' sum ')' by start position. In advanced mode every
	// parenthesized atom is first tried as a dice count, and without the memo
	// nested groups would be reparsed twice per level.
	groups map[int]groupResult
}

type groupResult struct {
	n   Node
	d   *Diagnostics
	end cursor
}

// Parse parses a dice expression. In advanced mode a dice count or side count
// may be a parenthesized sub-expression, as in "4d(2d4)kh2".
//
// On failure the returned error is a *Diagnostics.
func Parse(expression string, advanced bool) (Node, error) {
	p := &parser{
		cur:      newCursor(expression),
		advanced: advanced,
		furthest: newDiagnostics(expression, 0),
		groups:   make(map[int]groupResult),
	}

	n, d := p.sum()
	if d != nil {
		return nil, p.report(*d)
	}
	if !p.cur.done() {
		end := p.diag()
		end.AddValue(labelEnd)
		return nil, p.report(end)
	}
	return n, nil
}

func (p *parser) report(d Diagnostics) *Diagnostics {
	merged := p.furthest.Merge(d)
	merged.Source = p.cur.src
	return &merged
}

// diag starts a diagnostic at the current position.
func (p *parser) diag() Diagnostics {
	return newDiagnostics(p.cur.src, p.cur.pos())
}

// fail records d as a failed attempt and returns it.
func (p *parser) fail(d Diagnostics) *Diagnostics {
	p.furthest = p.furthest.Merge(d)
	return &d
}

// expect consumes lit after optional whitespace. On mismatch nothing is
// consumed and the failure is recorded at the first non-space character.
func (p *parser) expect(lit string) *Diagnostics {
	saved := p.cur.backup()
	p.cur.skipSpace()
	start := p.cur.pos()
	for _, want := range lit {
		r, ok := p.cur.peek()
		if !ok || r != want {
			d := newDiagnostics(p.cur.src, start)
			d.AddValue(label(lit))
			p.cur.restore(saved)
			return p.fail(d)
		}
		p.cur.advance()
	}
	return nil
}

// expectDigit consumes one digit after optional whitespace. Unlike expect it
// leaves recording the failure to the caller.
func (p *parser) expectDigit() (rune, *Diagnostics) {
	saved := p.cur.backup()
	p.cur.skipSpace()
	r, ok := p.cur.peek()
	if !ok || !isDigit(r) {
		d := p.diag()
		d.AddValue(labelDigit)
		p.cur.restore(saved)
		return 0, &d
	}
	p.cur.advance()
	return r, nil
}

func label(lit string) string {
	if len(lit) == 1 {
		return "'" + lit + "'"
	}
	return `"` + lit + `"`
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// sum := term (('+' | '-') term)*
func (p *parser) sum() (Node, *Diagnostics) {
	left, d := p.term()
	if d != nil {
		return nil, d
	}
	for {
		saved := p.cur.backup()
		var op Op
		switch {
		case p.expect("+") == nil:
			op = OpAdd
		case p.expect("-") == nil:
			op = OpSub
		default:
			return left, nil
		}
		right, d := p.term()
		if d != nil {
			p.cur.restore(saved)
			return nil, d
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

// term := factor (('*' | '/' | '//' | "mod") factor)*
func (p *parser) term() (Node, *Diagnostics) {
	left, d := p.factor()
	if d != nil {
		return nil, d
	}
	for {
		saved := p.cur.backup()
		op, ok := p.termOp()
		if !ok {
			p.cur.restore(saved)
			return left, nil
		}
		right, d := p.factor()
		if d != nil {
			p.cur.restore(saved)
			return nil, d
		}
		left = Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) termOp() (Op, bool) {
	if p.expect("*") == nil {
		return OpMul, true
	}
	// '//' must win over '/' followed by a stray '/'.
	if p.expect("/") == nil {
		if r, ok := p.cur.peek(); ok && r == '/' {
			p.cur.advance()
			return OpIDiv, true
		}
		return OpDiv, true
	}
	if p.expect("mod") == nil {
		return OpMod, true
	}
	return 0, false
}

// factor := '-' power | power
func (p *parser) factor() (Node, *Diagnostics) {
	saved := p.cur.backup()
	if p.expect("-") == nil {
		x, d := p.power()
		if d != nil {
			p.cur.restore(saved)
			return nil, d
		}
		return Minus{X: x}, nil
	}
	return p.power()
}

// power := atom ("**" factor)?
func (p *parser) power() (Node, *Diagnostics) {
	base, d := p.atom()
	if d != nil {
		return nil, d
	}
	saved := p.cur.backup()
	if p.expect("**") != nil {
		return base, nil
	}
	exp, d := p.factor()
	if d != nil {
		p.cur.restore(saved)
		return nil, d
	}
	return Binary{Op: OpPower, Left: base, Right: exp}, nil
}

// atom := dice | '(' sum ')' | number
func (p *parser) atom() (Node, *Diagnostics) {
	saved := p.cur.backup()

	n, diceErr := p.dice()
	if diceErr == nil {
		return n, nil
	}
	p.cur.restore(saved)

	n, parenErr := p.group()
	if parenErr == nil {
		return n, nil
	}
	p.cur.restore(saved)

	n, numErr := p.number()
	if numErr == nil {
		return n, nil
	}
	p.cur.restore(saved)

	merged := diceErr.Merge(*parenErr).Merge(*numErr)
	return nil, &merged
}

// group := '(' sum ')'
func (p *parser) group() (Node, *Diagnostics) {
	start := p.cur.pos()
	if r, ok := p.groups[start]; ok {
		if r.d == nil {
			p.cur.restore(r.end)
		}
		return r.n, r.d
	}
	n, d := p.parseGroup()
	p.groups[start] = groupResult{n: n, d: d, end: p.cur.backup()}
	return n, d
}

func (p *parser) parseGroup() (Node, *Diagnostics) {
	saved := p.cur.backup()
	if d := p.expect("("); d != nil {
		return nil, d
	}
	n, d := p.sum()
	if d != nil {
		p.cur.restore(saved)
		return nil, d
	}
	if d := p.expect(")"); d != nil {
		p.cur.restore(saved)
		return nil, d
	}
	return n, nil
}

// dice := count? 'd' sides? filter?
func (p *parser) dice() (Node, *Diagnostics) {
	saved := p.cur.backup()

	count, _ := p.operand()

	if d := p.expect("d"); d != nil {
		p.cur.restore(saved)
		return nil, d
	}
	// expect skipped any whitespace, so the 'd' is the character just consumed.
	pos := p.cur.pos() - 1

	sides, _ := p.sides()

	return Dice{
		Count:  count,
		Sides:  sides,
		Filter: p.filter(),
		Pos:    pos,
	}, nil
}

// operand := number | (advanced) '(' sum ')'
//
// A failed operand consumes nothing.
func (p *parser) operand() (Node, *Diagnostics) {
	saved := p.cur.backup()
	n, numErr := p.number()
	if numErr == nil {
		return n, nil
	}
	p.cur.restore(saved)
	if !p.advanced {
		return nil, numErr
	}
	n, parenErr := p.group()
	if parenErr == nil {
		return n, nil
	}
	p.cur.restore(saved)
	merged := numErr.Merge(*parenErr)
	return nil, &merged
}

// sides := '%' | number | (advanced) '(' sum ')'
func (p *parser) sides() (Node, *Diagnostics) {
	if p.expect("%") == nil {
		return Const{Text: "100"}, nil
	}
	return p.operand()
}

// filter := ("kh"|'h') number? | ("dl"|'l') number? | "dh" number? | "kl" number?
//
// Two-character keywords are tried before their one-character aliases.
func (p *parser) filter() Filter {
	keywords := []struct {
		lit  string
		kind FilterKind
	}{
		{"kh", KeepHighest},
		{"kl", KeepLowest},
		{"h", KeepHighest},
		{"dh", DropHighest},
		{"dl", DropLowest},
		{"l", DropLowest},
	}
	for _, kw := range keywords {
		if p.expect(kw.lit) != nil {
			continue
		}
		saved := p.cur.backup()
		n, d := p.number()
		if d != nil {
			p.cur.restore(saved)
			n = Const{Text: "1"}
		}
		return Filter{Kind: kw.kind, N: n}
	}
	return Filter{}
}

// number := digit+ ('.' digit+)?
func (p *parser) number() (Node, *Diagnostics) {
	first, d := p.expectDigit()
	if d != nil {
		d.SetMessage(msgNumber)
		return nil, p.fail(*d)
	}

	var text strings.Builder
	text.WriteRune(first)
	p.digits(&text)

	frac := p.cur.backup()
	r, ok := p.cur.peek()
	if !ok || r != '.' {
		d := p.diag()
		d.AddValue("'.'")
		p.fail(d)
		return Const{Text: text.String()}, nil
	}
	p.cur.advance()
	if r, ok := p.cur.peek(); !ok || !isDigit(r) {
		d := p.diag()
		d.AddValue(labelDigit)
		d.SetMessage(msgNumber)
		p.fail(d)
		p.cur.restore(frac)
		return Const{Text: text.String()}, nil
	}
	text.WriteByte('.')
	p.digits(&text)
	return Const{Text: text.String()}, nil
}

// digits consumes a run of digits with no whitespace in between.
func (p *parser) digits(text *strings.Builder) {
	for {
		r, ok := p.cur.peek()
		if !ok || !isDigit(r) {
			return
		}
		text.WriteRune(r)
		p.cur.advance()
	}
}
