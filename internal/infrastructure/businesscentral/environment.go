package businesscentral

import (
	"strings"

	"golang.org/x/text/cases"
)

// fallbackEnvironments are probed after the configured environment
var fallbackEnvironments = []string{"Production", "Sandbox", "production", "sandbox"}

// EnvironmentCandidates returns the environments to probe, in order.
// Blank names are skipped and names are deduplicated case-insensitively,
// keeping the first spelling seen.
func EnvironmentCandidates(defaultEnv string) []string {
	fold := cases.Fold()
	seen := make(map[string]struct{}, len(fallbackEnvironments)+1)
	candidates := make([]string, 0, len(fallbackEnvironments)+1)

	for _, env := range append([]string{defaultEnv}, fallbackEnvironments...) {
		name := strings.TrimSpace(env)
		if name == "" {
			continue
		}
		key := fold.String(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, name)
	}
	return candidates
}
