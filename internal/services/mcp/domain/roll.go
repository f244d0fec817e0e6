package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/diceroll/internal/dice"
	"github.com/louisbranch/diceroll/internal/random"
	"github.com/louisbranch/diceroll/internal/services/roll"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Roller is the roll service surface the tools need.
type Roller interface {
	Roll(ctx context.Context, request roll.Request) (roll.Response, error)
	Parse(ctx context.Context, expression string, advanced bool) (roll.ParseResponse, error)
	RollPool(ctx context.Context, specs []dice.DiceSpec, rng *random.RngRequest) (roll.PoolResponse, error)
}

// RollExpressionInput represents the MCP tool input for rolling an expression.
type RollExpressionInput struct {
	Expression string      `json:"expression" jsonschema:"dice expression, e.g. 2d6+3 or 4d6kh3"`
	Advanced   bool        `json:"advanced,omitempty" jsonschema:"allow parenthesized dice counts and sides, e.g. (1d4)d6"`
	Rng        *RngRequest `json:"rng,omitempty" jsonschema:"optional rng configuration"`
}

// ExpressionDiceRoll represents one dice term of a rolled expression.
type ExpressionDiceRoll struct {
	Position int    `json:"position" jsonschema:"offset of the d in the expression"`
	Count    int    `json:"count" jsonschema:"number of dice rolled"`
	Sides    int    `json:"sides" jsonschema:"number of sides per die"`
	Results  []int  `json:"results" jsonschema:"every die in roll order"`
	Dropped  []bool `json:"dropped" jsonschema:"whether the filter discarded the die at the same index"`
	Filter   string `json:"filter,omitempty" jsonschema:"keep/drop filter applied (kh, kl, dh, dl)"`
	Total    int    `json:"total" jsonschema:"sum of the kept dice"`
}

// RollExpressionResult represents the MCP tool output for an expression roll.
type RollExpressionResult struct {
	Expression string               `json:"expression" jsonschema:"expression as submitted"`
	Canonical  string               `json:"canonical" jsonschema:"expression as understood"`
	Value      float64              `json:"value" jsonschema:"computed value"`
	Display    string               `json:"display" jsonschema:"value formatted for display"`
	Trace      string               `json:"trace" jsonschema:"expression annotated with every die, dropped dice as ~~n~~"`
	Rolls      []ExpressionDiceRoll `json:"rolls" jsonschema:"dice terms in evaluation order"`
	Rng        *RngResult           `json:"rng,omitempty" jsonschema:"rng details"`
}

// ParseExpressionInput represents the MCP tool input for checking an expression.
type ParseExpressionInput struct {
	Expression string `json:"expression" jsonschema:"dice expression to check"`
	Advanced   bool   `json:"advanced,omitempty" jsonschema:"allow parenthesized dice counts and sides"`
}

// ParseExpressionResult represents the MCP tool output for a syntax check.
type ParseExpressionResult struct {
	Valid     bool     `json:"valid" jsonschema:"whether the expression parses"`
	Canonical string   `json:"canonical,omitempty" jsonschema:"expression as understood, when valid"`
	Error     string   `json:"error,omitempty" jsonschema:"why the expression does not parse"`
	Position  *int     `json:"position,omitempty" jsonschema:"offset where parsing failed"`
	Expected  []string `json:"expected,omitempty" jsonschema:"alternatives accepted at the failing offset"`
}

// RollDiceSpec represents an MCP die specification for a roll.
type RollDiceSpec struct {
	Sides int `json:"sides" jsonschema:"number of sides for the die"`
	Count int `json:"count" jsonschema:"number of dice to roll"`
}

// RollDiceInput represents the MCP tool input for rolling dice.
type RollDiceInput struct {
	Dice []RollDiceSpec `json:"dice" jsonschema:"dice specifications to roll"`
	Rng  *RngRequest    `json:"rng,omitempty" jsonschema:"optional rng configuration"`
}

// RollDiceRoll represents the results for a single dice spec.
type RollDiceRoll struct {
	Sides   int   `json:"sides" jsonschema:"number of sides for the die"`
	Results []int `json:"results" jsonschema:"individual roll results"`
	Total   int   `json:"total" jsonschema:"sum of the roll results"`
}

// RollDiceResult represents the MCP tool output for rolling dice.
type RollDiceResult struct {
	Expression string         `json:"expression" jsonschema:"pools written as a dice expression"`
	Rolls      []RollDiceRoll `json:"rolls" jsonschema:"results for each dice spec"`
	Total      int            `json:"total" jsonschema:"sum of all roll totals"`
	Rng        *RngResult     `json:"rng,omitempty" jsonschema:"rng details"`
}

// RollExpressionTool defines the MCP tool schema for expression rolls.
func RollExpressionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_expression",
		Description: "Rolls a dice expression such as 2d6+3, 4d6kh3 or 1d%",
	}
}

// ParseExpressionTool defines the MCP tool schema for syntax checks.
func ParseExpressionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "parse_expression",
		Description: "Checks a dice expression without rolling it",
	}
}

// RollDiceTool defines the MCP tool schema for rolling dice.
func RollDiceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roll_dice",
		Description: "Rolls arbitrary dice pools",
	}
}

// RollExpressionHandler rolls a dice expression.
func RollExpressionHandler(roller Roller) mcp.ToolHandlerFor[RollExpressionInput, RollExpressionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollExpressionInput) (*mcp.CallToolResult, RollExpressionResult, error) {
		response, err := roller.Roll(ctx, roll.Request{
			Expression: input.Expression,
			Advanced:   input.Advanced,
			Rng:        toRngRequest(input.Rng),
		})
		if err != nil {
			return nil, RollExpressionResult{}, rollError(err)
		}

		rolls := make([]ExpressionDiceRoll, 0, len(response.Rolls))
		for _, r := range response.Rolls {
			item := ExpressionDiceRoll{
				Position: r.Pos,
				Count:    r.Count,
				Sides:    r.Sides,
				Results:  r.Results,
				Dropped:  r.Dropped,
				Total:    r.Total,
			}
			if r.Filter != dice.FilterNone {
				item.Filter = fmt.Sprintf("%s%d", r.Filter, r.FilterCount)
			}
			rolls = append(rolls, item)
		}

		return nil, RollExpressionResult{
			Expression: response.Expression,
			Canonical:  response.Canonical,
			Value:      response.Value,
			Display:    response.Display,
			Trace:      response.Trace,
			Rolls:      rolls,
			Rng:        newRngResult(response.Seed, response.SeedSource, response.Mode),
		}, nil
	}
}

// ParseExpressionHandler checks a dice expression. Syntax problems are part
// of the result rather than tool errors.
func ParseExpressionHandler(roller Roller) mcp.ToolHandlerFor[ParseExpressionInput, ParseExpressionResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParseExpressionInput) (*mcp.CallToolResult, ParseExpressionResult, error) {
		response, err := roller.Parse(ctx, input.Expression, input.Advanced)
		if err == nil {
			return nil, ParseExpressionResult{Valid: true, Canonical: response.Canonical}, nil
		}

		var diag *dice.Diagnostics
		switch {
		case errors.As(err, &diag):
			pos := diag.Pos
			return nil, ParseExpressionResult{
				Error:    diag.Error(),
				Position: &pos,
				Expected: diag.Expected(),
			}, nil
		case errors.Is(err, roll.ErrEmptyExpression):
			return nil, ParseExpressionResult{Error: err.Error()}, nil
		default:
			return nil, ParseExpressionResult{}, fmt.Errorf("parse expression: %w", err)
		}
	}
}

// RollDiceHandler rolls plain dice pools.
func RollDiceHandler(roller Roller) mcp.ToolHandlerFor[RollDiceInput, RollDiceResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RollDiceInput) (*mcp.CallToolResult, RollDiceResult, error) {
		specs := make([]dice.DiceSpec, 0, len(input.Dice))
		for _, spec := range input.Dice {
			specs = append(specs, dice.DiceSpec{Sides: spec.Sides, Count: spec.Count})
		}

		response, err := roller.RollPool(ctx, specs, toRngRequest(input.Rng))
		if err != nil {
			return nil, RollDiceResult{}, fmt.Errorf("dice roll failed: %w", err)
		}

		rolls := make([]RollDiceRoll, 0, len(response.Rolls))
		for _, r := range response.Rolls {
			rolls = append(rolls, RollDiceRoll{
				Sides:   r.Sides,
				Results: r.Results,
				Total:   r.Total,
			})
		}

		return nil, RollDiceResult{
			Expression: response.Expression,
			Rolls:      rolls,
			Total:      response.Total,
			Rng:        newRngResult(response.Seed, response.SeedSource, response.Mode),
		}, nil
	}
}

// rollError prefixes engine failures with what went wrong for the caller.
func rollError(err error) error {
	switch {
	case roll.IsParseError(err):
		return fmt.Errorf("could not understand roll: %w", err)
	case roll.IsEvaluationError(err):
		return fmt.Errorf("roll does not make sense: %w", err)
	default:
		return fmt.Errorf("roll failed: %w", err)
	}
}
