package dice

import (
	"errors"
	"strconv"
)

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// DiceSpec describes a die to roll and how many times to roll it.
type DiceSpec struct {
	Sides int
	Count int
}

// DieRoll captures the results for a single dice spec.
type DieRoll struct {
	Sides   int
	Results []int
	Total   int
}

// RollRequest describes a request to roll one or more dice pools.
type RollRequest struct {
	Dice []DiceSpec
	Seed int64
	// MaxDice caps the count of any single spec; zero means DiceCeiling.
	MaxDice int
}

// RollResult captures the results from rolling multiple dice pools.
type RollResult struct {
	Rolls []DieRoll
	// Expression is the pool written as a dice expression, e.g. "2d6 + 1d8".
	Expression string
	Total      int
}

// PoolExpression builds the expression tree summing every spec in order.
func PoolExpression(specs []DiceSpec) (Node, error) {
	if len(specs) == 0 {
		return nil, ErrMissingDice
	}
	var sum Node
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return nil, ErrInvalidDiceSpec
		}
		d := Dice{
			Count: Const{Text: strconv.Itoa(spec.Count)},
			Sides: Const{Text: strconv.Itoa(spec.Sides)},
		}
		if sum == nil {
			sum = d
			continue
		}
		sum = Add(sum, d)
	}
	return sum, nil
}

// RollDice rolls dice pools through the expression evaluator.
//
// RollDice is deterministic with respect to Seed: the same Seed and the same
// Dice slice always produce the same RollResult. Rolls appear in the order of
// Dice, and Total is the sum of every die rolled.
func RollDice(request RollRequest) (RollResult, error) {
	expr, err := PoolExpression(request.Dice)
	if err != nil {
		return RollResult{}, err
	}

	result, err := Evaluator{MaxDice: request.MaxDice}.Evaluate(expr, NewSeededRoller(request.Seed))
	if err != nil {
		return RollResult{}, err
	}

	rolls := make([]DieRoll, 0, len(result.Rolls))
	for _, roll := range result.Rolls {
		rolls = append(rolls, DieRoll{
			Sides:   roll.Sides,
			Results: roll.Results,
			Total:   roll.Total,
		})
	}

	return RollResult{
		Rolls:      rolls,
		Expression: expr.String(),
		Total:      int(result.Value),
	}, nil
}
