package grouping

import (
	"fmt"
	"slices"
	"sort"
)

// rankCohorts orders cohorts by descending member count, keeping discovery
// order for ties, and assigns rank labels.
func rankCohorts(cohorts []Cohort) []Cohort {
	ranked := slices.Clone(cohorts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(ranked[i].Members) > len(ranked[j].Members)
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
		ranked[i].RankLabel = rankLabel(i+1, len(ranked))
	}
	return ranked
}

// rankLabel returns "Most Common" for rank 1, "Least Common" for the last
// rank, and "{rank}th Most Common" otherwise ("2th", "3th" included). A single
// cohort is "Most Common".
func rankLabel(rank, total int) string {
	switch {
	case rank == 1:
		return "Most Common"
	case rank == total:
		return "Least Common"
	default:
		return fmt.Sprintf("%dth Most Common", rank)
	}
}
