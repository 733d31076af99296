package board

import "fmt"

// Value is a side-to-move-relative score in centipawns, with the extreme
// bands reserved for "mated in N plies" (near math.MinInt16) and "mate in N
// plies" (near math.MaxInt16). Ported from the mate-band encoding in the
// original Kingly engine's Value type.
type Value int16

const (
	valueMin Value = -32768
	valueMax Value = 32767

	// MateBound marks the edge of the mate bands: any value at least this far
	// from zero (in its respective direction) represents a forced mate rather
	// than a centipawn evaluation.
	MateBound Value = 32000
)

// CentiPawn constructs a plain centipawn value.
func CentiPawn(cp int) Value { return Value(cp) }

// MateIn returns the score for delivering mate in the given number of plies.
func MateIn(plies int) Value { return valueMax - Value(plies) }

// MatedIn returns the score for being mated in the given number of plies.
func MatedIn(plies int) Value { return valueMin + 1 + Value(plies) }

// IsMateScore reports whether v is within the mate bands.
func (v Value) IsMateScore() bool { return v >= MateBound || v <= -MateBound }

// MatePlies returns the number of plies to mate (positive: we deliver mate;
// negative: we get mated), valid only when IsMateScore is true.
func (v Value) MatePlies() int {
	if v >= MateBound {
		return int(valueMax - v)
	}
	return -int(v - valueMin - 1)
}

// Neg returns -v, saturating at the representable range.
func (v Value) Neg() Value {
	if v == valueMin {
		return valueMax
	}
	return -v
}

func clamp(x int32) Value {
	if x > int32(valueMax) {
		return valueMax
	}
	if x < int32(valueMin) {
		return valueMin
	}
	return Value(x)
}

// Add returns v+o, saturating.
func (v Value) Add(o Value) Value { return clamp(int32(v) + int32(o)) }

// Sub returns v-o, saturating.
func (v Value) Sub(o Value) Value { return clamp(int32(v) - int32(o)) }

// Mul returns v*k, saturating.
func (v Value) Mul(k int) Value { return clamp(int32(v) * int32(k)) }

// DecMate takes one ply off a mate score's distance: "mate in N" becomes
// "mate in N-1" and "mated in N" becomes "mated in N-1" (saturating at the
// ends of the range); non-mate scores are unaffected. The search applies it
// to the negated window bounds it passes down to a child node.
func (v Value) DecMate() Value {
	switch {
	case v >= MateBound:
		return clamp(int32(v) + 1)
	case v <= -MateBound:
		return clamp(int32(v) - 1)
	default:
		return v
	}
}

// IncMate is the inverse ply-adjustment of DecMate: it adds one ply to a mate
// score's distance. The search applies it to a child's negated score as that
// score is passed back up to the parent.
func (v Value) IncMate() Value {
	switch {
	case v >= MateBound:
		return v - 1
	case v <= -MateBound:
		return v + 1
	default:
		return v
	}
}

func (v Value) String() string {
	if v >= MateBound {
		return fmt.Sprintf("mate %d", (int(valueMax-v)+1)/2)
	}
	if v <= -MateBound {
		return fmt.Sprintf("mate -%d", (int(v-valueMin)+1)/2)
	}
	return fmt.Sprintf("cp %d", int(v))
}
