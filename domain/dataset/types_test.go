package dataset

import (
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Name:       "january.csv",
		DateColumn: "date",
		Columns:    []string{"spend", "clicks", "sales"},
		Rows: []Row{
			{Date: "2024-01-01", Values: map[string]float64{"spend": 100, "clicks": 10, "sales": 500}},
			{Date: "2024-01-02", Values: map[string]float64{"spend": 200, "clicks": 20, "sales": 700}},
			{Date: "2024-01-03", Values: map[string]float64{"spend": 300, "clicks": 30, "sales": 900}},
			{Date: "2024-01-04", Values: map[string]float64{"spend": 400, "clicks": 40, "sales": 1100}},
		},
	}
}

func TestDetectDateColumn(t *testing.T) {
	cases := []struct {
		name    string
		headers []string
		want    string
		found   bool
	}{
		{"plain", []string{"date", "spend"}, "date", true},
		{"case insensitive", []string{"Spend", "Date"}, "Date", true},
		{"embedded", []string{"order_date", "spend"}, "order_date", true},
		{"cjk", []string{"日期", "花费"}, "日期", true},
		{"absent", []string{"spend", "sales"}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DetectDateColumn(tc.headers)
			if ok != tc.found || got != tc.want {
				t.Errorf("DetectDateColumn(%v) = (%q, %v), want (%q, %v)", tc.headers, got, ok, tc.want, tc.found)
			}
		})
	}
}

func TestDateBounds(t *testing.T) {
	table := sampleTable()
	min, max := table.DateBounds()
	if min != "2024-01-01" || max != "2024-01-04" {
		t.Errorf("bounds = (%s, %s)", min, max)
	}
}

func TestFilterByDateRange(t *testing.T) {
	table := sampleTable()

	filtered, key := table.FilterByDateRange("2024-01-02", "2024-01-03")
	if key != "2024-01-02_2024-01-03" {
		t.Errorf("range key = %q", key)
	}
	if len(filtered.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(filtered.Rows))
	}
	if filtered.Rows[0].Date != "2024-01-02" || filtered.Rows[1].Date != "2024-01-03" {
		t.Error("filter bounds should be inclusive")
	}

	// Empty bounds mean no filtering.
	same, key := table.FilterByDateRange("", "")
	if key != DefaultRangeKey {
		t.Errorf("unfiltered key = %q, want %q", key, DefaultRangeKey)
	}
	if len(same.Rows) != len(table.Rows) {
		t.Error("unfiltered pass must keep all rows")
	}

	// A window past the data yields an empty table, not an error.
	empty, _ := table.FilterByDateRange("2025-01-01", "2025-12-31")
	if !empty.IsEmpty() {
		t.Error("out-of-range window should produce an empty table")
	}
}

func TestColumn(t *testing.T) {
	table := sampleTable()
	spend := table.Column("spend")
	want := []float64{100, 200, 300, 400}
	if len(spend) != len(want) {
		t.Fatalf("got %d values", len(spend))
	}
	for i := range want {
		if spend[i] != want[i] {
			t.Errorf("spend[%d] = %v, want %v", i, spend[i], want[i])
		}
	}
	if got := table.Column("missing"); len(got) != 0 {
		t.Errorf("missing column should yield no values, got %v", got)
	}
}

func TestRolesValidate(t *testing.T) {
	table := sampleTable()

	ok := Roles{Features: []string{"spend"}, Controls: []string{"clicks"}, Targets: []string{"sales"}}
	if err := ok.Validate(table); err != nil {
		t.Fatalf("valid roles rejected: %v", err)
	}

	unknown := Roles{Features: []string{"tv_spend"}, Targets: []string{"sales"}}
	if err := unknown.Validate(table); err == nil {
		t.Error("unknown column should be rejected")
	}

	overlap := Roles{Features: []string{"spend"}, Targets: []string{"spend"}}
	if err := overlap.Validate(table); err == nil {
		t.Error("overlapping selections should be rejected")
	}
}

func TestStats(t *testing.T) {
	table := sampleTable()
	stats, err := table.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	spend := stats["spend"]
	if spend.Min != 100 || spend.Max != 400 {
		t.Errorf("spend min/max = %v/%v", spend.Min, spend.Max)
	}
	if spend.Mean != 250 {
		t.Errorf("spend mean = %v, want 250", spend.Mean)
	}
	if spend.StdDev <= 0 {
		t.Errorf("spend stddev = %v, want positive", spend.StdDev)
	}
	if spend.Q75 < spend.Mean || spend.Q75 > spend.Max {
		t.Errorf("spend q75 = %v outside (%v, %v)", spend.Q75, spend.Mean, spend.Max)
	}

	var zero *Table
	if _, err := zero.Stats(); err == nil {
		t.Error("empty table should not produce statistics")
	}
}

func TestGranularity(t *testing.T) {
	if GranularityDaily.MaxDelay() != 30 || GranularityWeekly.MaxDelay() != 12 {
		t.Error("unexpected delay bounds")
	}

	daily := GranularityDaily.DelayDomain()
	if len(daily) != 30 || daily[0] != 1 || daily[29] != 30 {
		t.Errorf("daily domain = %v", daily)
	}

	if GranularityDaily.PeriodLabel() != "day" || GranularityWeekly.PeriodLabel() != "week" {
		t.Error("unexpected period labels")
	}

	g, err := ParseGranularity("")
	if err != nil || g != GranularityDaily {
		t.Errorf("empty string should default to daily, got (%v, %v)", g, err)
	}
	if _, err := ParseGranularity("hourly"); err == nil {
		t.Error("unknown granularity should be rejected")
	}
}
