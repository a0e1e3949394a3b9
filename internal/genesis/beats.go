package genesis

import "fmt"

// GenerateBeats is phase 4: a deterministic function of the requested
// scene count (spec.md §4.5 step 4). Bridge goals alternate between
// advancing plot/relationships and raising stakes based on bridge
// index parity.
func GenerateBeats(scenes int) []BeatKind {
	switch {
	case scenes <= 0:
		return nil
	case scenes == 1:
		return []BeatKind{BeatSetup}
	case scenes == 2:
		return []BeatKind{BeatSetup, BeatConfrontation}
	default:
		beats := []BeatKind{BeatSetup, BeatConfrontation}
		bridgeCount := scenes - 3
		for i := 0; i < bridgeCount; i++ {
			beats = append(beats, BeatBridge)
		}
		beats = append(beats, BeatPayoff)
		return beats
	}
}

// BeatLabel returns the display label for the i-th beat of the given
// kind (0-indexed occurrence count among bridges).
func BeatLabel(kind BeatKind, bridgeIndex int) string {
	if kind != BeatBridge {
		return string(kind)
	}
	return fmt.Sprintf("BRIDGE-%d", bridgeIndex+1)
}

// BridgeGoal returns the deterministic goal line for a bridge scene,
// alternating by bridge index parity.
func BridgeGoal(bridgeIndex int) string {
	if bridgeIndex%2 == 0 {
		return "advance plot/relationships"
	}
	return "raise stakes via complication"
}
