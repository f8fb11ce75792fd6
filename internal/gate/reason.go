package gate

import (
	"encoding"
	"fmt"
)

// BlockReason explains why introductions were limited on a given day.
// It is a closed set so trace consumers can handle every case.
type BlockReason int

const (
	BlockNone             BlockReason = iota + 1 // Nothing limited the allowance.
	BlockClusterWeak                             // Gate in Consolidate: cluster energy below the band.
	BlockWorkingSetFull                          // Hard working-set cap reached.
	BlockCapacityExceeded                        // Soft session-capacity damping zeroed the allowance.
	BlockRateTooLow                              // Review throughput cannot sustain more actives.
)

var (
	blockReasonNames = [...]string{
		BlockNone:             "None",
		BlockClusterWeak:      "ClusterWeak",
		BlockWorkingSetFull:   "WorkingSetFull",
		BlockCapacityExceeded: "CapacityExceeded",
		BlockRateTooLow:       "RateTooLow",
	}
	blockReasonByName = map[string]BlockReason{
		"None":             BlockNone,
		"ClusterWeak":      BlockClusterWeak,
		"WorkingSetFull":   BlockWorkingSetFull,
		"CapacityExceeded": BlockCapacityExceeded,
		"RateTooLow":       BlockRateTooLow,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = BlockReason(0)
	_ encoding.TextMarshaler   = BlockReason(0)
	_ encoding.TextUnmarshaler = (*BlockReason)(nil)
)

// IsValid reports whether r is a known block reason.
func (r BlockReason) IsValid() bool {
	return r >= BlockNone && r <= BlockRateTooLow
}

// Blocked reports whether the reason represents an actual limit.
func (r BlockReason) Blocked() bool {
	return r.IsValid() && r != BlockNone
}

// String returns the reason name. For invalid values it returns
// "BlockReason(n)".
func (r BlockReason) String() string {
	if r.IsValid() {
		return blockReasonNames[r]
	}
	return fmt.Sprintf("BlockReason(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r BlockReason) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("gate: invalid block reason: %d", int(r))
	}
	return []byte(blockReasonNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *BlockReason) UnmarshalText(text []byte) error {
	v, ok := blockReasonByName[string(text)]
	if !ok {
		return fmt.Errorf("gate: invalid block reason: %q", text)
	}
	*r = v
	return nil
}
