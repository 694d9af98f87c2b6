package engine

import (
	"testing"

	"datalens/domain/query"
)

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestGroupAndAggregate_SumByRegion(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggSum,
		Measure:     "revenue",
		GroupBy:     []string{"region"},
		SortBy:      query.SortValueDesc,
	})

	if len(groups) != 4 {
		t.Fatalf("expected 4 region groups, got %d", len(groups))
	}
	// East=200, North=175, South=50, West=30
	if groups[0].Label != "East" || groups[0].Value != 200 {
		t.Errorf("expected East 200 first, got %s %f", groups[0].Label, groups[0].Value)
	}
	if groups[1].Label != "North" || groups[1].Value != 175 {
		t.Errorf("expected North 175 second, got %s %f", groups[1].Label, groups[1].Value)
	}
}

func TestGroupAndAggregate_Count(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggCount,
		GroupBy:     []string{"category"},
		SortBy:      query.SortValueDesc,
	})

	if len(groups) != 3 {
		t.Fatalf("expected 3 category groups, got %d", len(groups))
	}
	if groups[0].Value != 2 {
		t.Errorf("expected top category count 2, got %f", groups[0].Value)
	}
}

func TestGroupAndAggregate_AvgMinMax(t *testing.T) {
	tbl := salesTable()

	avg := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggAvg, Measure: "revenue", GroupBy: []string{"region"},
	})
	for _, g := range avg {
		if g.Label == "North" && g.Value != 87.5 {
			t.Errorf("expected North avg 87.5, got %f", g.Value)
		}
	}

	min := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggMin, Measure: "revenue",
	})
	if len(min) != 1 || min[0].Value != 30 {
		t.Errorf("expected single total group with min 30, got %+v", min)
	}

	max := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggMax, Measure: "revenue",
	})
	if max[0].Value != 200 {
		t.Errorf("expected max 200, got %f", max[0].Value)
	}
}

func TestGroupAndAggregate_Limit(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggSum,
		Measure:     "revenue",
		GroupBy:     []string{"region"},
		SortBy:      query.SortValueDesc,
		Limit:       2,
	})
	if len(groups) != 2 {
		t.Errorf("expected limit to cap groups at 2, got %d", len(groups))
	}
}

func TestGroupAndAggregate_SortLabelAsc(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggCount,
		GroupBy:     []string{"region"},
		SortBy:      query.SortLabelAsc,
	})
	if groups[0].Label != "East" || groups[len(groups)-1].Label != "West" {
		t.Errorf("expected alphabetical order, got %s..%s", groups[0].Label, groups[len(groups)-1].Label)
	}
}

func TestGroupAndAggregate_TwoLevel(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, allRows(5), query.Spec{
		Aggregation: query.AggSum,
		Measure:     "revenue",
		GroupBy:     []string{"region", "category"},
	})

	var north *query.Group
	for i := range groups {
		if groups[i].Label == "North" {
			north = &groups[i]
		}
	}
	if north == nil {
		t.Fatal("expected North group")
	}
	if len(north.SubGroups) != 2 {
		t.Fatalf("expected 2 subgroups under North, got %d", len(north.SubGroups))
	}
	var electronics float64
	for _, sg := range north.SubGroups {
		if sg.Label == "Electronics" {
			electronics = sg.Value
		}
	}
	if electronics != 100 {
		t.Errorf("expected North/Electronics 100, got %f", electronics)
	}
}

func TestGroupAndAggregate_BlankKey(t *testing.T) {
	tbl := salesTable()
	tbl.Rows = append(tbl.Rows, []string{"", "Home", "10", "Rug"})

	groups := GroupAndAggregate(tbl, allRows(6), query.Spec{
		Aggregation: query.AggCount,
		GroupBy:     []string{"region"},
	})

	found := false
	for _, g := range groups {
		if g.Label == "(blank)" {
			found = true
		}
	}
	if !found {
		t.Error("expected blank region grouped under (blank)")
	}
}

func TestGroupAndAggregate_EmptyRows(t *testing.T) {
	tbl := salesTable()
	groups := GroupAndAggregate(tbl, nil, query.Spec{Aggregation: query.AggCount})
	if groups != nil {
		t.Errorf("expected nil groups for no rows, got %v", groups)
	}
}
