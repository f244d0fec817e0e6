// Package random provides seed generation and seed resolution for rolls.
//
// Live rolls draw a fresh seed from crypto/rand. Replays reuse a seed
// supplied by the caller so the same expression rolls the same dice.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	// SeedSourceServer marks a seed generated for the roll.
	SeedSourceServer = "SERVER"
	// SeedSourceClient marks a seed supplied by the caller.
	SeedSourceClient = "CLIENT"

	// RngAlgo identifies the generator seeds are fed to.
	RngAlgo = "math/rand"
)

const maxSeedInt64 = math.MaxInt64

var errSeedOutOfRange = errors.New("seed must fit in a signed 64-bit integer")

// ErrSeedOutOfRange indicates a client seed that cannot seed the generator.
func ErrSeedOutOfRange() error {
	return errSeedOutOfRange
}

// RollMode selects between live rolls and replays.
type RollMode int

const (
	RollModeUnspecified RollMode = iota
	RollModeLive
	RollModeReplay
)

// ParseRollMode maps a roll mode label such as "replay" to a RollMode.
func ParseRollMode(value string) RollMode {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "REPLAY":
		return RollModeReplay
	case "LIVE":
		return RollModeLive
	default:
		return RollModeUnspecified
	}
}

func (m RollMode) String() string {
	switch m {
	case RollModeReplay:
		return "REPLAY"
	case RollModeLive:
		return "LIVE"
	default:
		return ""
	}
}

// RngRequest is the caller's optional seed configuration.
type RngRequest struct {
	Seed     *uint64
	RollMode RollMode
}

// NewSeed generates a non-negative random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:]) & maxSeedInt64), nil
}

// ResolveSeed picks the seed for a roll.
//
// A client seed is used only when the request carries one and allowClient
// accepts the requested mode; otherwise seedFunc generates one. A nil
// seedFunc falls back to NewSeed. An unspecified mode resolves to live.
//
// Generated seeds are cleared of their sign bit so every seed handed back to
// a caller can be replayed as a client seed.
func ResolveSeed(request *RngRequest, seedFunc func() (int64, error), allowClient func(RollMode) bool) (int64, string, RollMode, error) {
	mode := RollModeLive
	if request != nil && request.RollMode != RollModeUnspecified {
		mode = request.RollMode
	}

	if request != nil && request.Seed != nil && allowClient != nil && allowClient(mode) {
		if *request.Seed > maxSeedInt64 {
			return 0, "", mode, ErrSeedOutOfRange()
		}
		return int64(*request.Seed), SeedSourceClient, mode, nil
	}

	if seedFunc == nil {
		seedFunc = NewSeed
	}
	seed, err := seedFunc()
	if err != nil {
		return 0, "", mode, err
	}
	return seed & maxSeedInt64, SeedSourceServer, mode, nil
}

// AllowReplay permits client seeds for replays only.
func AllowReplay(mode RollMode) bool {
	return mode == RollModeReplay
}
