package roll

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/diceroll/internal/dice"
	"github.com/louisbranch/diceroll/internal/random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/diceroll/internal/services/roll"

// DefaultMaxDice is the per-roll dice cap used when none is configured.
const DefaultMaxDice = 1000

// ErrEmptyExpression indicates a request without an expression.
var ErrEmptyExpression = errors.New("expression is required")

// Service parses and rolls dice expressions.
type Service struct {
	seedFunc    func() (int64, error)
	allowClient func(random.RollMode) bool
	maxDice     int
	tracer      trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithSeedFunc replaces the server seed generator.
func WithSeedFunc(fn func() (int64, error)) Option {
	return func(s *Service) { s.seedFunc = fn }
}

// WithMaxDice caps how many dice one dice term may roll. Zero leaves only the engine ceiling.
func WithMaxDice(n int) Option {
	return func(s *Service) { s.maxDice = n }
}

// WithClientSeeds replaces the rule deciding when a caller-supplied seed is
// honoured.
func WithClientSeeds(allow func(random.RollMode) bool) Option {
	return func(s *Service) { s.allowClient = allow }
}

// WithTracerProvider records spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

// NewService creates a roll service. By default seeds come from crypto/rand,
// client seeds are accepted for replays only and each term rolls at most
// DefaultMaxDice dice.
func NewService(opts ...Option) *Service {
	s := &Service{
		seedFunc:    random.NewSeed,
		allowClient: random.AllowReplay,
		maxDice:     DefaultMaxDice,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	return s
}

// Request describes one expression roll.
type Request struct {
	Expression string
	// Advanced allows parenthesized dice counts and sides, e.g. "4d(2d4)".
	Advanced bool
	Rng      *random.RngRequest
}

// Response is a rolled expression.
type Response struct {
	Expression string
	// Canonical is the expression as the parser understood it.
	Canonical string
	Value     float64
	// Display is Value formatted for people.
	Display    string
	Trace      string
	Rolls      []dice.DiceRoll
	Seed       int64
	SeedSource string
	Mode       random.RollMode
}

// Roll parses and evaluates request.Expression with a resolved seed.
func (s *Service) Roll(ctx context.Context, request Request) (Response, error) {
	_, span := s.tracer.Start(ctx, "dice.roll", trace.WithAttributes(
		attribute.String("dice.expression", request.Expression),
		attribute.Bool("dice.advanced", request.Advanced),
	))
	defer span.End()

	if strings.TrimSpace(request.Expression) == "" {
		return Response{}, fail(span, ErrEmptyExpression)
	}

	node, err := dice.Parse(request.Expression, request.Advanced)
	if err != nil {
		return Response{}, fail(span, err)
	}

	seed, source, mode, err := s.resolveSeed(request.Rng)
	if err != nil {
		return Response{}, fail(span, err)
	}
	span.SetAttributes(attribute.String("dice.seed_source", source))

	result, err := dice.Evaluator{MaxDice: s.maxDice}.Evaluate(node, dice.NewSeededRoller(seed))
	if err != nil {
		return Response{}, fail(span, err)
	}
	span.SetAttributes(attribute.Float64("dice.value", result.Value))

	return Response{
		Expression: request.Expression,
		Canonical:  node.String(),
		Value:      result.Value,
		Display:    dice.FormatValue(result.Value),
		Trace:      result.Trace,
		Rolls:      result.Rolls,
		Seed:       seed,
		SeedSource: source,
		Mode:       mode,
	}, nil
}

// ParseResponse is a successfully parsed expression.
type ParseResponse struct {
	Canonical string
	Node      dice.Node
}

// Parse checks expression without rolling it.
func (s *Service) Parse(ctx context.Context, expression string, advanced bool) (ParseResponse, error) {
	_, span := s.tracer.Start(ctx, "dice.parse", trace.WithAttributes(
		attribute.String("dice.expression", expression),
		attribute.Bool("dice.advanced", advanced),
	))
	defer span.End()

	if strings.TrimSpace(expression) == "" {
		return ParseResponse{}, fail(span, ErrEmptyExpression)
	}
	node, err := dice.Parse(expression, advanced)
	if err != nil {
		return ParseResponse{}, fail(span, err)
	}
	return ParseResponse{Canonical: node.String(), Node: node}, nil
}

// PoolResponse is a rolled set of NdM pools.
type PoolResponse struct {
	dice.RollResult
	Seed       int64
	SeedSource string
	Mode       random.RollMode
}

// RollPool rolls plain dice pools, such as 2d6 and 1d8, in order.
func (s *Service) RollPool(ctx context.Context, specs []dice.DiceSpec, rng *random.RngRequest) (PoolResponse, error) {
	_, span := s.tracer.Start(ctx, "dice.roll_pool", trace.WithAttributes(
		attribute.Int("dice.pools", len(specs)),
	))
	defer span.End()

	seed, source, mode, err := s.resolveSeed(rng)
	if err != nil {
		return PoolResponse{}, fail(span, err)
	}
	span.SetAttributes(attribute.String("dice.seed_source", source))

	result, err := dice.RollDice(dice.RollRequest{Dice: specs, Seed: seed, MaxDice: s.maxDice})
	if err != nil {
		return PoolResponse{}, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("dice.expression", result.Expression),
		attribute.Int("dice.value", result.Total),
	)

	return PoolResponse{RollResult: result, Seed: seed, SeedSource: source, Mode: mode}, nil
}

func (s *Service) resolveSeed(rng *random.RngRequest) (int64, string, random.RollMode, error) {
	seed, source, mode, err := random.ResolveSeed(rng, s.seedFunc, s.allowClient)
	if err != nil {
		if errors.Is(err, random.ErrSeedOutOfRange()) {
			return 0, "", mode, err
		}
		return 0, "", mode, fmt.Errorf("generate seed: %w", err)
	}
	return seed, source, mode, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// IsParseError reports whether err is a syntax failure.
func IsParseError(err error) bool {
	var diag *dice.Diagnostics
	return errors.As(err, &diag)
}

// IsEvaluationError reports whether err is a failure computing a parsed
// expression.
func IsEvaluationError(err error) bool {
	var evalErr *dice.EvaluationError
	return errors.As(err, &evalErr)
}
