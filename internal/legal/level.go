package legal

import "github.com/shopspring/decimal"

const (
	// MaxTeamSize is the largest roster a trainer may carry.
	MaxTeamSize = 6
	MinLevel    = 1
	MaxLevel    = 100
	// MaxIV is the ceiling for each of the six individual values.
	MaxIV = 31
	// NatureCount is the number of natures.
	NatureCount = 25
	// TypeCount is the number of elemental types a theme can draw from.
	// Fairy (17) is never drawn.
	TypeCount = 17
	// MetronomeMove is the move id of the single-move "desperation" set.
	MetronomeMove = 118
)

// ModifiedLevel scales level by ratio, truncating toward zero and clamping the
// result to [MinLevel, MaxLevel]. Decimal arithmetic keeps ratios such as 1.1
// from landing one level short.
func ModifiedLevel(level int, ratio float64) int {
	scaled := decimal.NewFromInt(int64(level)).Mul(decimal.NewFromFloat(ratio)).Truncate(0).IntPart()
	if scaled < MinLevel {
		return MinLevel
	}
	if scaled > MaxLevel {
		return MaxLevel
	}
	return int(scaled)
}
