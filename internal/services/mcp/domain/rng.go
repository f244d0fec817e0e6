package domain

import "github.com/louisbranch/diceroll/internal/random"

// RngRequest represents optional RNG configuration for deterministic rolls.
type RngRequest struct {
	Seed     *uint64 `json:"seed,omitempty" jsonschema:"optional seed, honoured in REPLAY mode"`
	RollMode string  `json:"roll_mode,omitempty" jsonschema:"roll mode (LIVE or REPLAY)"`
}

// RngResult represents RNG details used for a roll.
type RngResult struct {
	SeedUsed   uint64 `json:"seed_used" jsonschema:"seed value used for the roll"`
	RngAlgo    string `json:"rng_algo" jsonschema:"rng algorithm identifier"`
	SeedSource string `json:"seed_source" jsonschema:"seed source (CLIENT or SERVER)"`
	RollMode   string `json:"roll_mode" jsonschema:"roll mode applied"`
}

// toRngRequest maps tool input to the seed resolver's request.
func toRngRequest(input *RngRequest) *random.RngRequest {
	if input == nil {
		return nil
	}
	return &random.RngRequest{
		Seed:     input.Seed,
		RollMode: random.ParseRollMode(input.RollMode),
	}
}

func newRngResult(seed int64, source string, mode random.RollMode) *RngResult {
	return &RngResult{
		SeedUsed:   uint64(seed),
		RngAlgo:    random.RngAlgo,
		SeedSource: source,
		RollMode:   mode.String(),
	}
}
