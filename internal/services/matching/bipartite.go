package matching

import "github.com/Jirawatp058/random-buddy/internal/model"

// candidates lists, for each giver index, the receiver indexes it may draw
func candidates(participants []string, exclusions model.ExclusionSet) [][]int {
	adj := make([][]int, len(participants))
	for i, giver := range participants {
		for j, receiver := range participants {
			if i != j && !exclusions.Excludes(giver, receiver) {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return adj
}

// perfectMatching runs Kuhn's algorithm over adj, trying givers in order.
// It returns the receiver index chosen for each giver.
func perfectMatching(adj [][]int, order []int) ([]int, bool) {
	n := len(adj)
	owner := make([]int, n) // receiver -> giver
	for i := range owner {
		owner[i] = -1
	}
	seen := make([]bool, n)

	var augment func(giver int) bool
	augment = func(giver int) bool {
		for _, r := range adj[giver] {
			if seen[r] {
				continue
			}
			seen[r] = true
			if owner[r] < 0 || augment(owner[r]) {
				owner[r] = giver
				return true
			}
		}
		return false
	}

	for _, giver := range order {
		clear(seen)
		if !augment(giver) {
			return nil, false
		}
	}

	match := make([]int, n)
	for r, giver := range owner {
		match[giver] = r
	}
	return match, true
}
