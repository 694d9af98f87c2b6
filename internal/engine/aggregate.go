package engine

import (
	"sort"
	"strings"

	"datalens/adapters/tabular"
	"datalens/domain/query"
)

// GroupAndAggregate runs the grouping pipeline: group, aggregate, sort,
// limit. Row indices reference the source table.
func GroupAndAggregate(t *tabular.Table, rows []int, spec query.Spec) []query.Group {
	if len(rows) == 0 {
		return nil
	}

	var groups []query.Group
	switch len(spec.GroupBy) {
	case 0:
		groups = []query.Group{{Key: "all", Label: "Total", RowIdx: rows}}
	case 1:
		groups = groupBySingle(t, rows, spec.GroupBy[0])
	default:
		groups = groupBySingle(t, rows, spec.GroupBy[0])
		for i := range groups {
			groups[i].SubGroups = groupBySingle(t, groups[i].RowIdx, spec.GroupBy[1])
			for j := range groups[i].SubGroups {
				aggregateGroup(t, &groups[i].SubGroups[j], spec.Measure, spec.Aggregation)
			}
		}
	}

	for i := range groups {
		aggregateGroup(t, &groups[i], spec.Measure, spec.Aggregation)
	}

	sortGroups(groups, spec.SortBy)

	if spec.Limit > 0 && len(groups) > spec.Limit {
		groups = groups[:spec.Limit]
	}

	return groups
}

func groupBySingle(t *tabular.Table, rows []int, column string) []query.Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for _, idx := range rows {
		key := strings.TrimSpace(t.Cell(idx, column))
		if key == "" {
			key = "(blank)"
		}
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], idx)
	}

	groups := make([]query.Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, query.Group{
			Key:    key,
			Label:  key,
			RowIdx: grouped[key],
		})
	}
	return groups
}

func aggregateGroup(t *tabular.Table, g *query.Group, measure string, agg query.Aggregation) {
	g.Count = len(g.RowIdx)

	if agg == query.AggCount || agg == query.AggList || measure == "" {
		g.Value = float64(g.Count)
		return
	}

	values := measureValues(t, g.RowIdx, measure)
	if len(values) == 0 {
		g.Value = 0
		return
	}

	switch agg {
	case query.AggSum:
		g.Value = sum(values)
	case query.AggAvg:
		g.Value = sum(values) / float64(len(values))
	case query.AggMin:
		g.Value = values[0]
		for _, v := range values[1:] {
			if v < g.Value {
				g.Value = v
			}
		}
	case query.AggMax:
		g.Value = values[0]
		for _, v := range values[1:] {
			if v > g.Value {
				g.Value = v
			}
		}
	default:
		g.Value = sum(values)
	}
}

func measureValues(t *tabular.Table, rows []int, measure string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, idx := range rows {
		if v, ok := tabular.ParseNumeric(t.Cell(idx, measure)); ok {
			values = append(values, v)
		}
	}
	return values
}

func sortGroups(groups []query.Group, sortBy string) {
	switch sortBy {
	case query.SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value > groups[j].Value })
	case query.SortValueAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Value < groups[j].Value })
	case query.SortLabelAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Label < groups[j].Label })
	case query.SortLabelDesc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Label > groups[j].Label })
	default:
		// keep first-seen order
	}
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}
