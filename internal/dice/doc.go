// Package dice parses and evaluates tabletop dice expressions such as
// "2d6+3", "10d%dl3" or, in advanced mode, "4d(2d4)kh2".
//
// Parsing and evaluation are separate steps with separate failure types:
//
//   - Parse returns a *Diagnostics when the text does not match the grammar.
//     It names the furthest position reached and every alternative that would
//     have been accepted there.
//   - Evaluate returns an *EvaluationError when a well-formed expression
//     cannot be computed, such as a division by zero or a die with no sides.
//
// # Grammar
//
// Lowest to highest precedence, left-associative unless noted:
//
//	sum     := term (('+' | '-') term)*
//	term    := factor (('*' | '/' | '//' | "mod") factor)*
//	factor  := '-' power | power
//	power   := atom ("**" factor)?            right-associative
//	atom    := dice | '(' sum ')' | number
//	dice    := count? 'd' sides? filter?
//	count   := number | '(' sum ')'           parentheses in advanced mode only
//	sides   := '%' | number | '(' sum ')'     parentheses in advanced mode only
//	filter  := ("kh" | 'h' | "kl" | "dh" | "dl" | 'l') number?
//	number  := digit+ ('.' digit+)?
//
// # Evaluation
//
// Values are float64. '/' divides exactly, '//' floors and "mod" is the
// matching floored remainder. Dice counts and side counts must evaluate to
// non-negative integers; keep/drop filters rank equal dice by roll order.
//
// The package does no I/O and holds no shared state. Randomness comes from
// the Roller passed to Evaluate.
package dice
