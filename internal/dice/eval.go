package dice

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strconv"
	"strings"
)

// maxOperand bounds dice operands to integers a float64 represents exactly.
const maxOperand = 1 << 53

// DiceCeiling is the most dice a single dice node rolls, whatever the
// evaluator's MaxDice.
const DiceCeiling = 1_000_000

// ErrMissingRoller indicates Evaluate was called without a randomness source.
var ErrMissingRoller = errors.New("a roller is required to evaluate dice")

// DiceRoll records one evaluated dice node.
type DiceRoll struct {
	// Pos is the offset of the 'd' in the source expression.
	Pos   int
	Count int
	Sides int
	// Results holds every die in roll order; Dropped flags the ones the
	// filter discarded.
	Results     []int
	Dropped     []bool
	Filter      FilterKind
	FilterCount int
	Total       int
}

// Result is a computed expression value.
type Result struct {
	Value float64
	// Trace is the canonical expression with each dice roll followed by its
	// individual results, dropped dice struck through, e.g.
	// "4d6kh2 [4, ~~1~~, 6, ~~2~~] + 3".
	Trace string
	Rolls []DiceRoll
}

// Evaluator computes expression trees.
type Evaluator struct {
	// MaxDice caps how many dice a single dice node may roll. Zero, or a
	// value above DiceCeiling, means DiceCeiling.
	MaxDice int
}

// Evaluate computes n, rolling at most DiceCeiling dice per dice node.
func Evaluate(n Node, roller Roller) (Result, error) {
	return Evaluator{}.Evaluate(n, roller)
}

// Evaluate computes n, rolling dice through roller.
//
// Failures are returned as *EvaluationError, except for a nil roller. No
// partial result is returned on failure.
func (e Evaluator) Evaluate(n Node, roller Roller) (Result, error) {
	if roller == nil {
		return Result{}, ErrMissingRoller
	}
	limit := e.MaxDice
	if limit <= 0 || limit > DiceCeiling {
		limit = DiceCeiling
	}
	ev := &evaluation{roller: roller, maxDice: limit}
	value, err := ev.eval(n)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Value: value,
		Trace: ev.trace(n),
		Rolls: ev.rolls,
	}, nil
}

type evaluation struct {
	roller  Roller
	maxDice int
	// rolls is filled in post-order, the same order writeNode visits dice.
	rolls []DiceRoll
}

func (ev *evaluation) eval(n Node) (float64, error) {
	switch n := n.(type) {
	case Const:
		return parseNumeral(n.Text)
	case Minus:
		x, err := ev.eval(n.X)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case Binary:
		return ev.binary(n)
	case Dice:
		return ev.dice(n)
	case nil:
		return 0, evalErrorf(MalformedNumeral, -1, "missing operand")
	default:
		return 0, evalErrorf(MalformedNumeral, -1, "unsupported node %T", n)
	}
}

func (ev *evaluation) binary(n Binary) (float64, error) {
	l, err := ev.eval(n.Left)
	if err != nil {
		return 0, err
	}
	r, err := ev.eval(n.Right)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, evalErrorf(DivideByZero, -1, "%s", n)
		}
		return l / r, nil
	case OpIDiv:
		if r == 0 {
			return 0, evalErrorf(DivideByZero, -1, "%s", n)
		}
		return math.Floor(l / r), nil
	case OpMod:
		if r == 0 {
			return 0, evalErrorf(ModuloByZero, -1, "%s", n)
		}
		// Floored modulo: the result takes the sign of the divisor, which
		// keeps a == (a // b)*b + a mod b.
		m := math.Mod(l, r)
		if m != 0 && (m < 0) != (r < 0) {
			m += r
		}
		return m, nil
	case OpPower:
		return math.Pow(l, r), nil
	default:
		return 0, evalErrorf(MalformedNumeral, -1, "unknown operator %d", int(n.Op))
	}
}

func (ev *evaluation) dice(d Dice) (float64, error) {
	count := 1
	if d.Count != nil {
		v, err := ev.eval(d.Count)
		if err != nil {
			return 0, err
		}
		if count, err = operand(v, d.Pos, "count"); err != nil {
			return 0, err
		}
	}

	if d.Sides == nil {
		return 0, evalErrorf(MissingSides, d.Pos, "%s", d)
	}
	v, err := ev.eval(d.Sides)
	if err != nil {
		return 0, err
	}
	sides, err := operand(v, d.Pos, "sides")
	if err != nil {
		return 0, err
	}
	if sides == 0 {
		return 0, evalErrorf(InvalidDiceOperand, d.Pos, "cannot roll a die with 0 sides")
	}
	if count > ev.maxDice {
		return 0, evalErrorf(InvalidDiceOperand, d.Pos, "cannot roll %d dice, the limit is %d", count, ev.maxDice)
	}

	keep := 1
	if d.Filter.Kind != FilterNone && d.Filter.N != nil {
		v, err := ev.eval(d.Filter.N)
		if err != nil {
			return 0, err
		}
		if keep, err = operand(v, d.Pos, d.Filter.Kind.String()); err != nil {
			return 0, err
		}
	}

	results := make([]int, count)
	for i := range results {
		if sides == 1 {
			results[i] = 1
			continue
		}
		results[i] = ev.roller.Roll(1, sides)
	}

	roll := DiceRoll{
		Pos:     d.Pos,
		Count:   count,
		Sides:   sides,
		Results: results,
		Dropped: dropped(results, d.Filter.Kind, keep),
		Filter:  d.Filter.Kind,
	}
	if roll.Filter != FilterNone {
		roll.FilterCount = keep
	}
	for i, value := range results {
		if !roll.Dropped[i] {
			roll.Total += value
		}
	}
	ev.rolls = append(ev.rolls, roll)
	return float64(roll.Total), nil
}

// operand converts a dice operand to a non-negative integer.
func operand(v float64, pos int, what string) (int, error) {
	if math.IsNaN(v) || v < 0 || v > maxOperand || v != math.Trunc(v) {
		return 0, evalErrorf(InvalidDiceOperand, pos, "%s is %s", what, FormatValue(v))
	}
	return int(v), nil
}

// dropped marks the dice a filter discards. Dice with equal values are
// ranked by roll order, so the earlier of two equal dice is the one kept by
// keep-highest and dropped by drop-highest. A filter selecting at least as
// many dice as were rolled leaves every die in place.
func dropped(results []int, kind FilterKind, n int) []bool {
	out := make([]bool, len(results))
	if kind == FilterNone || n >= len(results) {
		return out
	}

	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	highFirst := kind == KeepHighest || kind == DropHighest
	slices.SortStableFunc(order, func(a, b int) int {
		if highFirst {
			return cmp.Compare(results[b], results[a])
		}
		return cmp.Compare(results[a], results[b])
	})

	switch kind {
	case KeepHighest, KeepLowest:
		for _, i := range order[n:] {
			out[i] = true
		}
	case DropHighest, DropLowest:
		for _, i := range order[:n] {
			out[i] = true
		}
	}
	return out
}

// parseNumeral converts literal text of the form digit+ ('.' digit+)?.
func parseNumeral(text string) (float64, error) {
	if !isNumeral(text) {
		return 0, evalErrorf(MalformedNumeral, -1, "%q", text)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, evalErrorf(MalformedNumeral, -1, "%q", text)
	}
	return v, nil
}

func isNumeral(text string) bool {
	intPart, frac, hasFrac := strings.Cut(text, ".")
	if !allDigits(intPart) {
		return false
	}
	return !hasFrac || allDigits(frac)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isDigit(r) {
			return false
		}
	}
	return true
}

func (ev *evaluation) trace(n Node) string {
	next := 0
	var sb strings.Builder
	writeNode(&sb, n, func(sb *strings.Builder, _ Dice) {
		if next >= len(ev.rolls) {
			return
		}
		writeRolls(sb, ev.rolls[next])
		next++
	})
	return sb.String()
}

func writeRolls(sb *strings.Builder, roll DiceRoll) {
	sb.WriteString(" [")
	for i, value := range roll.Results {
		if i > 0 {
			sb.WriteString(", ")
		}
		if roll.Dropped[i] {
			sb.WriteString("~~" + strconv.Itoa(value) + "~~")
			continue
		}
		sb.WriteString(strconv.Itoa(value))
	}
	sb.WriteString("]")
}

// FormatValue renders a result value, without a fractional part when it is
// integral.
func FormatValue(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
