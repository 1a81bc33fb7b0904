package filter

import (
	"testing"
	"time"

	"societygate/internal/adapters/persistence/models"
)

// fixed reference instant: 2024-03-15 14:30 local
var now = time.Date(2024, 3, 15, 14, 30, 0, 0, time.Local)

func visitorAt(t time.Time) models.Visitor {
	return models.Visitor{Name: "v", Flat: "A-101", Status: models.VisitorStatusPending, CheckInAt: t}
}

func TestWindowRange_Today(t *testing.T) {
	r := WindowRange(WindowToday, MonthCalendar, nil, nil, now)
	mid := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"exactly_midnight_included", mid, true},
		{"one_ms_before_midnight_excluded", mid.Add(-time.Millisecond), false},
		{"midday_included", now, true},
		{"tomorrow_included", mid.AddDate(0, 0, 1), true}, // today is open-ended
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestWindowRange_Yesterday(t *testing.T) {
	r := WindowRange(WindowYesterday, MonthCalendar, nil, nil, now)
	yesterdayMid := time.Date(2024, 3, 14, 0, 0, 0, 0, time.Local)
	todayMid := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)

	if !r.Contains(yesterdayMid) {
		t.Error("start of yesterday should be included")
	}
	if !r.Contains(todayMid.Add(-time.Millisecond)) {
		t.Error("last ms of yesterday should be included")
	}
	if r.Contains(todayMid) {
		t.Error("today's midnight should be excluded from yesterday")
	}
	if r.Contains(yesterdayMid.Add(-time.Millisecond)) {
		t.Error("day before yesterday should be excluded")
	}
}

func TestWindowRange_Week(t *testing.T) {
	r := WindowRange(WindowWeek, MonthCalendar, nil, nil, now)
	start := time.Date(2024, 3, 8, 0, 0, 0, 0, time.Local)
	if !r.Contains(start) {
		t.Error("seven days back at midnight should be included")
	}
	if r.Contains(start.Add(-time.Millisecond)) {
		t.Error("before the week window should be excluded")
	}
}

func TestWindowRange_MonthModes(t *testing.T) {
	calendar := WindowRange(WindowMonth, MonthCalendar, nil, nil, now)
	rolling := WindowRange(WindowMonth, MonthRolling, nil, nil, now)

	firstOfMonth := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	feb20 := time.Date(2024, 2, 20, 12, 0, 0, 0, time.Local)

	if !calendar.Contains(firstOfMonth) {
		t.Error("calendar month should include the first of the month")
	}
	if calendar.Contains(feb20) {
		t.Error("calendar month should exclude last month's dates")
	}
	// rolling window reaches one calendar month back from today
	if !rolling.Contains(feb20) {
		t.Error("rolling month should include a date three weeks back")
	}
	if rolling.Contains(time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local)) {
		t.Error("rolling month should exclude dates past one month back")
	}
}

func TestWindowRange_CustomInclusiveBounds(t *testing.T) {
	start := time.Date(2024, 3, 10, 9, 45, 0, 0, time.Local) // time-of-day ignored
	end := time.Date(2024, 3, 12, 9, 45, 0, 0, time.Local)
	r := WindowRange(WindowCustom, MonthCalendar, &start, &end, now)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"start_of_first_day", time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), true},
		{"end_of_last_day", time.Date(2024, 3, 12, 23, 59, 59, int(999 * time.Millisecond), time.Local), true},
		{"before_first_day", time.Date(2024, 3, 9, 23, 59, 59, int(999 * time.Millisecond), time.Local), false},
		{"after_last_day", time.Date(2024, 3, 13, 0, 0, 0, 0, time.Local), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.at); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestWindowRange_CustomMissingBoundDisablesFilter(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	r := WindowRange(WindowCustom, MonthCalendar, &start, nil, now)
	if !r.Contains(time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local)) {
		t.Error("custom range with a missing bound should not filter at all")
	}
}

func TestWindowRange_All(t *testing.T) {
	r := WindowRange(WindowAll, MonthCalendar, nil, nil, now)
	if !r.Contains(time.Date(1970, 1, 1, 0, 0, 0, 0, time.Local)) || !r.Contains(now.AddDate(10, 0, 0)) {
		t.Error("the all window should match everything")
	}
}

func TestVisitorTime_Fallbacks(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	created := now.Add(-2 * time.Hour)

	v := models.Visitor{CheckInAt: checkIn, CreatedAt: created}
	if got := VisitorTime(&v, now); !got.Equal(checkIn) {
		t.Errorf("expected check-in time, got %v", got)
	}

	v = models.Visitor{CreatedAt: created}
	if got := VisitorTime(&v, now); !got.Equal(created) {
		t.Errorf("expected created time, got %v", got)
	}

	v = models.Visitor{}
	if got := VisitorTime(&v, now); !got.Equal(now) {
		t.Errorf("expected now fallback, got %v", got)
	}
}

func TestSearchVisitors_CaseInsensitiveSubstring(t *testing.T) {
	visitors := []models.Visitor{
		{Name: "John Doe", Flat: "A-101", Purpose: "Delivery", Status: "pending", CheckInAt: now},
		{Name: "Ravi", Flat: "B-205", Purpose: "Plumbing", Status: "inside", CheckInAt: now},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"a-10", 1},  // matches flat A-101
		{"JOHN", 1},  // case-insensitive name
		{"deliv", 1}, // purpose substring
		{"inside", 1},
		{"b-2", 1},
		{"", 2},
		{"zzz", 0},
	}
	for _, tt := range tests {
		got := SearchVisitors(visitors, tt.query)
		if len(got) != tt.want {
			t.Errorf("SearchVisitors(%q) matched %d, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestEntriesByHistoryStatus(t *testing.T) {
	entries := []Entry{
		VisitorEntry(models.Visitor{Name: "in", Status: models.VisitorStatusInside}),
		VisitorEntry(models.Visitor{Name: "out", Status: models.VisitorStatusOut}),
		VisitorEntry(models.Visitor{Name: "rej", Status: models.VisitorStatusRejected}),
		ApprovalEntry(models.PreApproval{Name: "cancelled", Status: models.ApprovalStatusCancelled}),
		ApprovalEntry(models.PreApproval{Name: "active", Status: models.ApprovalStatusActive}),
	}

	if got := EntriesByHistoryStatus(entries, HistoryInside); len(got) != 1 || got[0].Visitor.Name != "in" {
		t.Errorf("inside window wrong: %v", got)
	}
	if got := EntriesByHistoryStatus(entries, HistoryOut); len(got) != 1 || got[0].Visitor.Name != "out" {
		t.Errorf("out window wrong: %v", got)
	}
	got := EntriesByHistoryStatus(entries, HistoryOther)
	if len(got) != 2 {
		t.Fatalf("other window should bundle rejected visitors and cancelled approvals, got %d", len(got))
	}
	if got[0].Kind != KindVisitor || got[1].Kind != KindApproval {
		t.Errorf("other window picked the wrong records: %v", got)
	}
	if got := EntriesByHistoryStatus(entries, HistoryAll); len(got) != 5 {
		t.Errorf("all window should pass everything through, got %d", len(got))
	}
}

func TestEntriesByCard(t *testing.T) {
	entries := []Entry{
		VisitorEntry(models.Visitor{Name: "in", Status: models.VisitorStatusInside}),
		ApprovalEntry(models.PreApproval{Name: "coming", Status: models.ApprovalStatusActive}),
		ApprovalEntry(models.PreApproval{Name: "arrived", Status: models.ApprovalStatusActive, ArrivalStatus: models.ArrivalStatusArrived}),
		ApprovalEntry(models.PreApproval{Name: "expired", Status: models.ApprovalStatusActive, ArrivalStatus: models.ArrivalStatusExpired}),
		ApprovalEntry(models.PreApproval{Name: "cancelled", Status: models.ApprovalStatusCancelled, ArrivalStatus: models.ArrivalStatusCancelled}),
	}

	if got := EntriesByCard(entries, CardComing); len(got) != 1 || got[0].Approval.Name != "coming" {
		t.Errorf("coming card should select only not-yet-arrived active approvals: %v", got)
	}
	if got := EntriesByCard(entries, CardExpired); len(got) != 1 || got[0].Approval.Name != "expired" {
		t.Errorf("expired card wrong: %v", got)
	}
	if got := EntriesByCard(entries, CardCancelled); len(got) != 1 || got[0].Approval.Name != "cancelled" {
		t.Errorf("cancelled card wrong: %v", got)
	}
	if got := EntriesByCard(entries, CardInside); len(got) != 1 || got[0].Visitor.Name != "in" {
		t.Errorf("inside card wrong: %v", got)
	}
}

func TestSortEntriesDesc_StableOnTies(t *testing.T) {
	t1 := now.Add(-3 * time.Hour)
	t2 := now.Add(-1 * time.Hour)

	entries := []Entry{
		VisitorEntry(models.Visitor{Name: "old", CheckInAt: t1}),
		VisitorEntry(models.Visitor{Name: "tie-first", CheckInAt: t2}),
		VisitorEntry(models.Visitor{Name: "tie-second", CheckInAt: t2}),
	}
	SortEntriesDesc(entries, now)

	want := []string{"tie-first", "tie-second", "old"}
	for i, name := range want {
		if entries[i].Visitor.Name != name {
			t.Fatalf("position %d = %s, want %s", i, entries[i].Visitor.Name, name)
		}
	}
}

func TestVisitorsInRange(t *testing.T) {
	mid := time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)
	visitors := []models.Visitor{
		visitorAt(mid),                        // today, boundary
		visitorAt(mid.Add(-time.Millisecond)), // yesterday
		visitorAt(now),                        // today
	}
	r := WindowRange(WindowToday, MonthCalendar, nil, nil, now)
	got := VisitorsInRange(visitors, r, now)
	if len(got) != 2 {
		t.Fatalf("today window matched %d visitors, want 2", len(got))
	}
}
