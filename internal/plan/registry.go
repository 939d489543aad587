package plan

import "strconv"

// TitleRegistry tracks claimed titles per folder so duplicates get stable
// numeric suffixes. It is owned by the orchestrator and mutated by exactly
// one in-flight entry at a time, so no locking is needed.
type TitleRegistry struct {
	claims map[string]map[string]int
}

// NewTitleRegistry returns an empty registry.
func NewTitleRegistry() *TitleRegistry {
	return &TitleRegistry{claims: make(map[string]map[string]int)}
}

// Claim reserves a title for base in folder and returns the title to use:
// the bare base on first claim, then "base 2", "base 3", ... on repeats.
// Read, pick, and increment happen in one step so the suffix sequence is
// strictly increasing per folder regardless of interleaving with other
// folders.
func (r *TitleRegistry) Claim(folder, base string) string {
	byBase := r.claims[folder]
	if byBase == nil {
		byBase = make(map[string]int)
		r.claims[folder] = byBase
	}

	byBase[base]++
	n := byBase[base]
	if n == 1 {
		return base
	}
	return base + " " + strconv.Itoa(n)
}
