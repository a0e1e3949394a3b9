package genesis

import "fmt"

// CollectWarnings surfaces non-fatal structural concerns about a
// request that do not block planning.
func CollectWarnings(req Request) []string {
	var warnings []string

	spread := req.Target.MaxWords - req.Target.MinWords
	if spread < 100 {
		warnings = append(warnings, fmt.Sprintf("tight word-count range: max_words-min_words=%d is under 100", spread))
	}
	if req.Target.Scenes > 50 {
		warnings = append(warnings, fmt.Sprintf("large scene count: %d scenes requested", req.Target.Scenes))
	}
	if req.ArcSpec.ActCount == 1 {
		warnings = append(warnings, "single-act structure: act_count=1")
	}
	if len(req.ContinuityClaims) > 200 {
		warnings = append(warnings, fmt.Sprintf("many continuity claims: %d", len(req.ContinuityClaims)))
	}
	if req.Target.Scenes > 100 {
		warnings = append(warnings, fmt.Sprintf("scene count exceeds 100: %d", req.Target.Scenes))
	}

	return warnings
}
