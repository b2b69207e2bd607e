package scan

import (
	"fmt"

	"github.com/MJE43/trainerrand/internal/runner"
)

// TargetOp represents comparison operations for scanning
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// Metric names a number read off one randomized run
type Metric string

const (
	MetricEntries        Metric = "entries"
	MetricEntriesAdded   Metric = "entries_added"
	MetricEntriesDropped Metric = "entries_dropped"
	MetricClassesChanged Metric = "classes_changed"
	MetricMegaSwaps      Metric = "mega_swaps"
	MetricForcedEvolves  Metric = "forced_evolves"
	MetricMovesSanitized Metric = "moves_sanitized"
	MetricDraws          Metric = "draws"
	MetricAvgLevel       Metric = "avg_level"
	// MetricSpeciesCount counts entries of Request.Species across all teams.
	MetricSpeciesCount Metric = "species_count"
)

// Metrics lists every supported metric.
func Metrics() []Metric {
	return []Metric{
		MetricEntries, MetricEntriesAdded, MetricEntriesDropped, MetricClassesChanged,
		MetricMegaSwaps, MetricForcedEvolves, MetricMovesSanitized, MetricDraws,
		MetricAvgLevel, MetricSpeciesCount,
	}
}

// measure reads metric m from res
func measure(m Metric, species int, res *runner.Result) float64 {
	st := res.Stats
	switch m {
	case MetricEntries:
		return float64(st.Entries)
	case MetricEntriesAdded:
		return float64(st.EntriesAdded)
	case MetricEntriesDropped:
		return float64(st.EntriesDropped)
	case MetricClassesChanged:
		return float64(st.ClassesChanged)
	case MetricMegaSwaps:
		return float64(st.MegaSwaps)
	case MetricForcedEvolves:
		return float64(st.ForcedEvolves)
	case MetricMovesSanitized:
		return float64(st.MovesSanitized)
	case MetricDraws:
		return float64(res.Draws)
	case MetricAvgLevel:
		var sum, n int
		for _, s := range res.Summaries {
			if s.TeamSize == 0 {
				continue
			}
			sum += s.AvgLevel
			n++
		}
		if n == 0 {
			return 0
		}
		return float64(sum) / float64(n)
	case MetricSpeciesCount:
		count := 0
		for _, s := range res.Summaries {
			for _, id := range s.Species {
				if id == species {
					count++
				}
			}
		}
		return float64(count)
	}
	return 0
}

func validMetric(m Metric) bool {
	for _, known := range Metrics() {
		if m == known {
			return true
		}
	}
	return false
}

// TargetEvaluator handles target condition evaluation with tolerance
type TargetEvaluator struct {
	op        TargetOp
	val1      float64
	val2      float64 // for "between" and "outside"
	tolerance float64
}

// NewTargetEvaluator checks op and the bounds it needs
func NewTargetEvaluator(op TargetOp, val1, val2, tolerance float64) (*TargetEvaluator, error) {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
	case OpBetween, OpOutside:
		if val2 < val1 {
			return nil, fmt.Errorf("%w: %s needs target_val <= target_val2", ErrInvalidTarget, op)
		}
	default:
		return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidTarget, op)
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: negative tolerance", ErrInvalidTarget)
	}
	return &TargetEvaluator{op: op, val1: val1, val2: val2, tolerance: tolerance}, nil
}

// Matches checks if a metric matches the target criteria
func (te *TargetEvaluator) Matches(metric float64) bool {
	switch te.op {
	case OpEqual:
		return abs(metric-te.val1) <= te.tolerance
	case OpGreater:
		return metric > te.val1+te.tolerance
	case OpGreaterEqual:
		return metric >= te.val1-te.tolerance
	case OpLess:
		return metric < te.val1-te.tolerance
	case OpLessEqual:
		return metric <= te.val1+te.tolerance
	case OpBetween:
		return metric >= te.val1-te.tolerance && metric <= te.val2+te.tolerance
	case OpOutside:
		return metric < te.val1-te.tolerance || metric > te.val2+te.tolerance
	default:
		return false
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
