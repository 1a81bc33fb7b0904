// Package filter holds the pure projection functions behind every dashboard:
// time windows, status windows, free-text search and activity-log ordering.
// Everything here operates on in-memory snapshots and is deterministic and
// total — malformed records fall back to the reference time instead of
// failing.
package filter

import (
	"sort"
	"strings"
	"time"

	"societygate/internal/adapters/persistence/models"
)

// Window identifies a time range preset shared across dashboards
type Window string

const (
	WindowAll       Window = "all"
	WindowToday     Window = "today"
	WindowYesterday Window = "yesterday"
	WindowWeek      Window = "week"
	WindowMonth     Window = "month"
	WindowCustom    Window = "custom"
)

// MonthMode selects which month semantics apply. The admin dashboard counts
// from the first calendar day of the current month; the resident dashboard
// uses a rolling one-month lookback. The two are intentionally different and
// kept separate.
type MonthMode int

const (
	MonthCalendar MonthMode = iota
	MonthRolling
)

// TimeRange bounds a window. A zero Start or End means unbounded on that
// side; the zero TimeRange matches everything.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range. Both bounds are
// inclusive.
func (r TimeRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// midnight returns local midnight of the day containing t
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// endOfDay returns 23:59:59.999 local of the day containing t
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// WindowRange resolves a window preset into a concrete TimeRange relative to
// now. For WindowCustom a missing bound degenerates to no filtering at all.
func WindowRange(w Window, mode MonthMode, customStart, customEnd *time.Time, now time.Time) TimeRange {
	today := midnight(now)

	switch w {
	case WindowToday:
		return TimeRange{Start: today}
	case WindowYesterday:
		return TimeRange{
			Start: today.AddDate(0, 0, -1),
			End:   endOfDay(today.AddDate(0, 0, -1)),
		}
	case WindowWeek:
		return TimeRange{Start: today.AddDate(0, 0, -7)}
	case WindowMonth:
		if mode == MonthCalendar {
			y, m, _ := now.Date()
			return TimeRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, now.Location())}
		}
		return TimeRange{Start: today.AddDate(0, -1, 0)}
	case WindowCustom:
		if customStart == nil || customEnd == nil {
			return TimeRange{}
		}
		return TimeRange{
			Start: midnight(*customStart),
			End:   endOfDay(*customEnd),
		}
	default: // WindowAll and anything unrecognized
		return TimeRange{}
	}
}

// ============================================================
// Record timestamps
// ============================================================

// VisitorTime derives the instant used to filter and sort a visitor record:
// check-in time, else creation time, else now.
func VisitorTime(v *models.Visitor, now time.Time) time.Time {
	if !v.CheckInAt.IsZero() {
		return v.CheckInAt
	}
	if !v.CreatedAt.IsZero() {
		return v.CreatedAt
	}
	return now
}

// ApprovalTime derives the instant used to filter and sort a pre-approval:
// request time, else creation time, else now.
func ApprovalTime(p *models.PreApproval, now time.Time) time.Time {
	if !p.RequestedAt.IsZero() {
		return p.RequestedAt
	}
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt
	}
	return now
}

// ============================================================
// Tagged history entries
// ============================================================

// EntryKind discriminates the record variants that feed mixed history views
type EntryKind string

const (
	KindVisitor  EntryKind = "visitor"
	KindApproval EntryKind = "approval"
)

// Entry is an explicitly tagged record for mixed visitor/pre-approval views.
// The tag carries the kind so no view ever has to infer it from which fields
// happen to be set.
type Entry struct {
	Kind     EntryKind           `json:"kind"`
	Visitor  *models.Visitor     `json:"visitor,omitempty"`
	Approval *models.PreApproval `json:"approval,omitempty"`
}

// VisitorEntry wraps a visitor record
func VisitorEntry(v models.Visitor) Entry {
	c := v
	return Entry{Kind: KindVisitor, Visitor: &c}
}

// ApprovalEntry wraps a pre-approval record
func ApprovalEntry(p models.PreApproval) Entry {
	c := p
	return Entry{Kind: KindApproval, Approval: &c}
}

// Time derives the entry's instant for filtering and sorting
func (e Entry) Time(now time.Time) time.Time {
	switch e.Kind {
	case KindVisitor:
		if e.Visitor != nil {
			return VisitorTime(e.Visitor, now)
		}
	case KindApproval:
		if e.Approval != nil {
			return ApprovalTime(e.Approval, now)
		}
	}
	return now
}

// ============================================================
// Time-window filters
// ============================================================

// VisitorsInRange returns the visitors whose derived timestamp falls in r
func VisitorsInRange(visitors []models.Visitor, r TimeRange, now time.Time) []models.Visitor {
	out := make([]models.Visitor, 0, len(visitors))
	for _, v := range visitors {
		v := v
		if r.Contains(VisitorTime(&v, now)) {
			out = append(out, v)
		}
	}
	return out
}

// ApprovalsInRange returns the pre-approvals whose derived timestamp falls in r
func ApprovalsInRange(approvals []models.PreApproval, r TimeRange, now time.Time) []models.PreApproval {
	out := make([]models.PreApproval, 0, len(approvals))
	for _, p := range approvals {
		p := p
		if r.Contains(ApprovalTime(&p, now)) {
			out = append(out, p)
		}
	}
	return out
}

// EntriesInRange returns the entries whose derived timestamp falls in r
func EntriesInRange(entries []Entry, r TimeRange, now time.Time) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.Time(now)) {
			out = append(out, e)
		}
	}
	return out
}

// ============================================================
// Status windows
// ============================================================

// HistoryStatus is the resident-history status window
type HistoryStatus string

const (
	HistoryAll    HistoryStatus = "all"
	HistoryInside HistoryStatus = "inside"
	HistoryOut    HistoryStatus = "out"
	// HistoryOther bundles rejected visitors with cancelled pre-approvals
	HistoryOther HistoryStatus = "other"
)

// EntriesByHistoryStatus applies the resident-history status window
func EntriesByHistoryStatus(entries []Entry, status HistoryStatus) []Entry {
	if status == HistoryAll || status == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch status {
		case HistoryInside:
			if e.Kind == KindVisitor && e.Visitor.Status == models.VisitorStatusInside {
				out = append(out, e)
			}
		case HistoryOut:
			if e.Kind == KindVisitor && e.Visitor.Status == models.VisitorStatusOut {
				out = append(out, e)
			}
		case HistoryOther:
			if e.Kind == KindVisitor && e.Visitor.Status == models.VisitorStatusRejected {
				out = append(out, e)
			}
			if e.Kind == KindApproval && e.Approval.Status == models.ApprovalStatusCancelled {
				out = append(out, e)
			}
		}
	}
	return out
}

// CardFilter is a security stat-card sub-filter
type CardFilter string

const (
	CardAll       CardFilter = "all"
	CardInside    CardFilter = "inside"
	CardOut       CardFilter = "out"
	CardComing    CardFilter = "coming"
	CardCancelled CardFilter = "cancelled"
	CardExpired   CardFilter = "expired"
)

// EntriesByCard applies a security stat-card sub-filter. "coming" selects
// active pre-approvals whose visitor has not yet arrived.
func EntriesByCard(entries []Entry, card CardFilter) []Entry {
	if card == CardAll || card == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch card {
		case CardInside:
			if e.Kind == KindVisitor && e.Visitor.Status == models.VisitorStatusInside {
				out = append(out, e)
			}
		case CardOut:
			if e.Kind == KindVisitor && e.Visitor.Status == models.VisitorStatusOut {
				out = append(out, e)
			}
		case CardComing:
			if e.Kind == KindApproval &&
				e.Approval.Status == models.ApprovalStatusActive &&
				e.Approval.ArrivalStatus == "" {
				out = append(out, e)
			}
		case CardCancelled:
			if e.Kind == KindApproval && e.Approval.Status == models.ApprovalStatusCancelled {
				out = append(out, e)
			}
		case CardExpired:
			if e.Kind == KindApproval && e.Approval.ArrivalStatus == models.ArrivalStatusExpired {
				out = append(out, e)
			}
		}
	}
	return out
}

// ============================================================
// Free-text search
// ============================================================

func containsFold(field, query string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(query))
}

// MatchVisitor reports whether any searchable visitor field contains the
// query (case-insensitive substring)
func MatchVisitor(v *models.Visitor, query string) bool {
	if query == "" {
		return true
	}
	return containsFold(v.Name, query) ||
		containsFold(v.Flat, query) ||
		containsFold(v.Purpose, query) ||
		containsFold(v.Status, query)
}

// MatchApproval reports whether any searchable pre-approval field contains
// the query
func MatchApproval(p *models.PreApproval, query string) bool {
	if query == "" {
		return true
	}
	return containsFold(p.Name, query) ||
		containsFold(p.Flat, query) ||
		containsFold(p.Category, query) ||
		containsFold(p.Status, query)
}

// MatchUser reports whether any searchable user field contains the query
func MatchUser(u *models.User, query string) bool {
	if query == "" {
		return true
	}
	return containsFold(u.Name, query) ||
		containsFold(u.Flat, query) ||
		containsFold(u.Phone, query)
}

// SearchVisitors keeps the visitors matching the query
func SearchVisitors(visitors []models.Visitor, query string) []models.Visitor {
	if query == "" {
		return visitors
	}
	out := make([]models.Visitor, 0, len(visitors))
	for _, v := range visitors {
		v := v
		if MatchVisitor(&v, query) {
			out = append(out, v)
		}
	}
	return out
}

// SearchEntries keeps the entries matching the query
func SearchEntries(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch e.Kind {
		case KindVisitor:
			if MatchVisitor(e.Visitor, query) {
				out = append(out, e)
			}
		case KindApproval:
			if MatchApproval(e.Approval, query) {
				out = append(out, e)
			}
		}
	}
	return out
}

// ============================================================
// Ordering
// ============================================================

// SortVisitorsDesc orders visitors most recent first. Ties keep their
// original collection order.
func SortVisitorsDesc(visitors []models.Visitor, now time.Time) {
	sort.SliceStable(visitors, func(i, j int) bool {
		return VisitorTime(&visitors[i], now).After(VisitorTime(&visitors[j], now))
	})
}

// SortEntriesDesc orders entries most recent first, stable on ties
func SortEntriesDesc(entries []Entry, now time.Time) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time(now).After(entries[j].Time(now))
	})
}
