package engine

import "sort"

// RankMode selects the tie behavior.
type RankMode int

const (
	// StandardRank leaves gaps after ties: values 100,100,100,80 rank 1,1,1,4.
	StandardRank RankMode = iota
	// DenseRank does not: the same values rank 1,1,1,2.
	DenseRank
)

// Ranked is an aggregate result with its ordinal position inside a partition.
type Ranked struct {
	AggregateResult
	Rank int64
}

// Rank orders each partition by cmp (negative meaning a ranks before b) and
// numbers the rows. Rows that compare equal share a rank. Partitions keep
// their first-seen order; the sort within a partition is stable, so input
// order is the tie-break for equal rows.
func Rank(results []AggregateResult, partitionFn func(AggregateResult) string, cmp func(a, b AggregateResult) int, mode RankMode) []Ranked {
	partitions := make(map[string][]AggregateResult)
	order := make([]string, 0)
	for _, res := range results {
		p := partitionFn(res)
		if _, ok := partitions[p]; !ok {
			order = append(order, p)
		}
		partitions[p] = append(partitions[p], res)
	}

	out := make([]Ranked, 0, len(results))
	for _, p := range order {
		part := partitions[p]
		sort.SliceStable(part, func(i, j int) bool {
			return cmp(part[i], part[j]) < 0
		})

		var rank int64
		for i, res := range part {
			switch {
			case i == 0:
				rank = 1
			case cmp(part[i-1], res) != 0:
				if mode == StandardRank {
					rank = int64(i) + 1
				} else {
					rank++
				}
			}
			out = append(out, Ranked{AggregateResult: res, Rank: rank})
		}
	}
	return out
}
