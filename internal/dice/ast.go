package dice

import "strings"

// Node is an expression tree node. The set of implementations is closed:
// Const, Binary, Minus and Dice.
type Node interface {
	// String renders canonical expression text that parses back to an equal
	// tree in advanced mode.
	String() string
	node()
}

// Const is a numeric literal kept as its source digits.
type Const struct {
	Text string
}

// Op identifies a binary arithmetic operator.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpPower
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpIDiv:
		return "//"
	case OpMod:
		return "mod"
	case OpPower:
		return "**"
	default:
		return "?"
	}
}

// Binary applies Op to two operands.
type Binary struct {
	Op    Op
	Left  Node
	Right Node
}

// Minus negates its operand.
type Minus struct {
	X Node
}

// FilterKind selects which rolled dice are kept.
type FilterKind int

const (
	FilterNone FilterKind = iota
	KeepHighest
	KeepLowest
	DropHighest
	DropLowest
)

func (k FilterKind) String() string {
	switch k {
	case KeepHighest:
		return "kh"
	case KeepLowest:
		return "kl"
	case DropHighest:
		return "dh"
	case DropLowest:
		return "dl"
	default:
		return ""
	}
}

// Filter is a keep/drop modifier applied to a dice roll. N is the number of
// dice it selects; the parser fills in Const "1" when the suffix omits it.
type Filter struct {
	Kind FilterKind
	N    Node
}

// Dice rolls Count dice of Sides faces. Count may be nil (one die); Sides may
// be nil syntactically but fails evaluation. Pos is the offset of the 'd' and
// is only used to attribute errors.
type Dice struct {
	Count  Node
	Sides  Node
	Filter Filter
	Pos    int
}

func (Const) node()  {}
func (Binary) node() {}
func (Minus) node()  {}
func (Dice) node()   {}

func Add(l, r Node) Binary   { return Binary{Op: OpAdd, Left: l, Right: r} }
func Sub(l, r Node) Binary   { return Binary{Op: OpSub, Left: l, Right: r} }
func Mul(l, r Node) Binary   { return Binary{Op: OpMul, Left: l, Right: r} }
func Div(l, r Node) Binary   { return Binary{Op: OpDiv, Left: l, Right: r} }
func IDiv(l, r Node) Binary  { return Binary{Op: OpIDiv, Left: l, Right: r} }
func Mod(l, r Node) Binary   { return Binary{Op: OpMod, Left: l, Right: r} }
func Power(l, r Node) Binary { return Binary{Op: OpPower, Left: l, Right: r} }

// Binding levels, lowest first. They mirror the grammar rules.
const (
	levelSum = iota
	levelTerm
	levelFactor
	levelPower
	levelAtom
)

func level(n Node) int {
	switch n := n.(type) {
	case Binary:
		switch n.Op {
		case OpAdd, OpSub:
			return levelSum
		case OpPower:
			return levelPower
		default:
			return levelTerm
		}
	case Minus:
		return levelFactor
	default:
		return levelAtom
	}
}

func (c Const) String() string { return c.Text }

func (b Binary) String() string {
	var sb strings.Builder
	writeNode(&sb, b, nil)
	return sb.String()
}

func (m Minus) String() string {
	var sb strings.Builder
	writeNode(&sb, m, nil)
	return sb.String()
}

func (d Dice) String() string {
	var sb strings.Builder
	writeNode(&sb, d, nil)
	return sb.String()
}

// annotate, when set, is called after a dice node has been written. The
// evaluator uses it to interleave roll results into the canonical text.
type annotate func(sb *strings.Builder, d Dice)

func writeNode(sb *strings.Builder, n Node, note annotate) {
	switch n := n.(type) {
	case Const:
		sb.WriteString(n.Text)
	case Binary:
		lv := level(n)
		// Left-associative rules wrap an equal-level right operand; power is
		// right-associative and its base must be an atom.
		leftMin, rightMin := lv, lv+1
		if n.Op == OpPower {
			leftMin, rightMin = levelAtom, levelFactor
		}
		writeOperand(sb, n.Left, leftMin, note)
		switch n.Op {
		case OpMod:
			sb.WriteString(" mod ")
		case OpAdd, OpSub:
			sb.WriteString(" " + n.Op.String() + " ")
		default:
			sb.WriteString(n.Op.String())
		}
		writeOperand(sb, n.Right, rightMin, note)
	case Minus:
		sb.WriteString("-")
		writeOperand(sb, n.X, levelPower, note)
	case Dice:
		if n.Count != nil {
			writeOperand(sb, n.Count, levelAtom+1, note)
		}
		sb.WriteString("d")
		if n.Sides != nil {
			writeOperand(sb, n.Sides, levelAtom+1, note)
		}
		if n.Filter.Kind != FilterNone {
			sb.WriteString(n.Filter.Kind.String())
			if n.Filter.N != nil {
				writeOperand(sb, n.Filter.N, levelAtom+1, note)
			}
		}
		if note != nil {
			note(sb, n)
		}
	}
}

// writeOperand parenthesizes n when it binds looser than minLevel. Dice
// operands use levelAtom+1 so that anything but a literal is wrapped.
func writeOperand(sb *strings.Builder, n Node, minLevel int, note annotate) {
	if _, ok := n.(Const); ok || level(n) >= minLevel {
		writeNode(sb, n, note)
		return
	}
	sb.WriteString("(")
	writeNode(sb, n, note)
	sb.WriteString(")")
}
