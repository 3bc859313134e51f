package ran

import "github.com/zeu5/ran-rl-opt/types"

// The action space is power x tilt x handover, three options each.
// Deltas are ordered decrease, keep, increase.
var (
	PowerDeltas    = [3]float64{-3, 0, 3}
	TiltDeltas     = [3]float64{-2, 0, 2}
	HandoverDeltas = [3]float64{-5, 0, 5}
)

const (
	NumActions = 27
	// NoOpAction keeps every parameter (index 1 of each delta set)
	NoOpAction = 13
)

// DecodeIndices performs the mixed radix decomposition of an action.
// Any integer is accepted, it is reduced modulo NumActions first.
func DecodeIndices(action int) (power, tilt, handover int) {
	a := ((action % NumActions) + NumActions) % NumActions
	return a / 9, (a % 9) / 3, a % 3
}

// DecodeAction maps an action index to the parameter deltas
func DecodeAction(action int) types.Delta {
	p, t, h := DecodeIndices(action)
	return types.Delta{
		Power:    PowerDeltas[p],
		Tilt:     TiltDeltas[t],
		Handover: HandoverDeltas[h],
	}
}

// EncodeIndices is the inverse of DecodeIndices
func EncodeIndices(power, tilt, handover int) int {
	return power*9 + tilt*3 + handover
}

// EncodeDelta finds the action for a delta, false if the delta is not in the action space
func EncodeDelta(d types.Delta) (int, bool) {
	p, ok := indexOf(PowerDeltas, d.Power)
	if !ok {
		return 0, false
	}
	t, ok := indexOf(TiltDeltas, d.Tilt)
	if !ok {
		return 0, false
	}
	h, ok := indexOf(HandoverDeltas, d.Handover)
	if !ok {
		return 0, false
	}
	return EncodeIndices(p, t, h), true
}

func indexOf(set [3]float64, v float64) (int, bool) {
	for i, s := range set {
		if s == v {
			return i, true
		}
	}
	return 0, false
}
