package diet

import "sort"

// PreyCount is one (family, prey) cell of the diet summary.
type PreyCount struct {
	Family string
	Prey   string
	Count  int
}

// Summarize groups records by (family, prey), counts occurrences, and drops
// groups with count <= minCount. minCount=1 keeps the smallest-sample family
// represented; it is a tuning decision, not a universal constant.
// Output order is deterministic: family, then descending count, then prey.
func Summarize(recs []Record, minCount int) []PreyCount {
	type key struct{ family, prey string }
	counts := make(map[key]int)
	for _, r := range recs {
		if r.Family == "" || r.Prey == "" {
			continue
		}
		counts[key{r.Family, r.Prey}]++
	}

	var out []PreyCount
	for k, n := range counts {
		if n <= minCount {
			continue
		}
		out = append(out, PreyCount{Family: k.family, Prey: k.prey, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Prey < out[j].Prey
	})
	return out
}
