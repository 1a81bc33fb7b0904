package services

import (
	"context"
	"time"

	"societygate/internal/adapters/persistence/models"
	"societygate/internal/adapters/persistence/repositories"
	"societygate/internal/core/filter"
	"societygate/internal/pkg/pagination"
)

// ============================================================
// Dashboard Service — role-specific projections
// ============================================================

// ViewQuery carries the user-driven view controls shared by every dashboard:
// a time window, an optional status sub-filter and a free-text search.
type ViewQuery struct {
	Window      filter.Window
	CustomStart *time.Time
	CustomEnd   *time.Time
	Status      filter.HistoryStatus
	Card        filter.CardFilter
	Search      string
}

// DashboardService assembles dashboard data. Records are loaded as snapshots
// and projected in memory through the filter package, so every view sees one
// consistent read.
type DashboardService struct {
	visitorRepo  repositories.VisitorRepository
	approvalRepo repositories.ApprovalRepository
	notifRepo    repositories.NotificationRepository
	userRepo     repositories.UserRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	visitorRepo repositories.VisitorRepository,
	approvalRepo repositories.ApprovalRepository,
	notifRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
) *DashboardService {
	return &DashboardService{
		visitorRepo:  visitorRepo,
		approvalRepo: approvalRepo,
		notifRepo:    notifRepo,
		userRepo:     userRepo,
	}
}

// ============================================================
// Admin Dashboard
// ============================================================

// AdminDashboardData represents admin dashboard data. Month figures cover the
// current calendar month.
type AdminDashboardData struct {
	// Community
	TotalResidents int64 `json:"total_residents"`
	TotalGuards    int64 `json:"total_guards"`

	// Visitors
	TotalVisitors    int64 `json:"total_visitors"`
	VisitorsToday    int64 `json:"visitors_today"`
	VisitorsMonth    int64 `json:"visitors_month"`
	VisitorsInside   int64 `json:"visitors_inside"`
	VisitorsPending  int64 `json:"visitors_pending"`
	VisitorsRejected int64 `json:"visitors_rejected"`

	// Pre-approvals
	TotalPreApprovals int64 `json:"total_pre_approvals"`
	ArrivedToday      int64 `json:"arrived_today"`
	ExpiredTotal      int64 `json:"expired_total"`

	// Recent entries across both record kinds, newest first
	RecentActivity []filter.Entry `json:"recent_activity"`
}

// GetAdminDashboard returns the society-wide overview
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	now := time.Now()
	data := &AdminDashboardData{}

	var err error
	if data.TotalResidents, err = s.userRepo.CountByRole(ctx, models.RoleResident); err != nil {
		return nil, err
	}
	if data.TotalGuards, err = s.userRepo.CountByRole(ctx, models.RoleSecurity); err != nil {
		return nil, err
	}

	var zero time.Time
	today := filter.WindowRange(filter.WindowToday, filter.MonthCalendar, nil, nil, now).Start
	month := filter.WindowRange(filter.WindowMonth, filter.MonthCalendar, nil, nil, now).Start

	if data.TotalVisitors, err = s.visitorRepo.CountSince(ctx, zero); err != nil {
		return nil, err
	}
	if data.VisitorsToday, err = s.visitorRepo.CountSince(ctx, today); err != nil {
		return nil, err
	}
	if data.VisitorsMonth, err = s.visitorRepo.CountSince(ctx, month); err != nil {
		return nil, err
	}
	if data.VisitorsInside, err = s.visitorRepo.CountByStatusSince(ctx, models.VisitorStatusInside, zero); err != nil {
		return nil, err
	}
	if data.VisitorsPending, err = s.visitorRepo.CountByStatusSince(ctx, models.VisitorStatusPending, zero); err != nil {
		return nil, err
	}
	if data.VisitorsRejected, err = s.visitorRepo.CountByStatusSince(ctx, models.VisitorStatusRejected, zero); err != nil {
		return nil, err
	}

	approvals, err := s.approvalRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	data.TotalPreApprovals = int64(len(approvals))
	if data.ArrivedToday, err = s.approvalRepo.CountByArrivalStatusSince(ctx, models.ArrivalStatusArrived, today); err != nil {
		return nil, err
	}
	if data.ExpiredTotal, err = s.approvalRepo.CountByArrivalStatusSince(ctx, models.ArrivalStatusExpired, zero); err != nil {
		return nil, err
	}

	visitors, err := s.visitorRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	entries := buildEntries(visitors, approvals)
	filter.SortEntriesDesc(entries, now)
	if len(entries) > 10 {
		entries = entries[:10]
	}
	data.RecentActivity = entries

	return data, nil
}

// GetActivityLog returns one page of the society-wide activity log with the
// admin view controls applied: calendar-month window semantics, free-text
// search and newest-first ordering. Filtering happens before paging so the
// totals describe the filtered log.
func (s *DashboardService) GetActivityLog(ctx context.Context, q ViewQuery, params *pagination.Params) (*pagination.Response, error) {
	visitors, err := s.visitorRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	approvals, err := s.approvalRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entries := buildEntries(visitors, approvals)
	r := filter.WindowRange(q.Window, filter.MonthCalendar, q.CustomStart, q.CustomEnd, now)
	entries = filter.EntriesInRange(entries, r, now)
	entries = filter.SearchEntries(entries, q.Search)
	filter.SortEntriesDesc(entries, now)

	start, end := pagination.Bounds(params, len(entries))
	return pagination.NewResponse(entries[start:end], params, int64(len(entries))), nil
}

// ============================================================
// Resident Dashboard
// ============================================================

// ResidentDashboardData represents one flat's dashboard
type ResidentDashboardData struct {
	// Visitors waiting at the gate for this flat
	PendingArrivals []models.Visitor `json:"pending_arrivals"`

	// Mixed visitor and pre-approval history, filtered by the view controls
	History []filter.Entry `json:"history"`

	// The flat's pre-approvals with their codes, newest first
	Approvals []*models.PreApprovalResponse `json:"approvals"`

	UnreadCount int64 `json:"unread_count"`
}

// GetResidentDashboard returns a flat's dashboard. The month window uses a
// rolling one-month lookback.
func (s *DashboardService) GetResidentDashboard(ctx context.Context, flat string, q ViewQuery) (*ResidentDashboardData, error) {
	visitors, err := s.visitorRepo.ListByFlat(ctx, flat)
	if err != nil {
		return nil, err
	}
	approvals, err := s.approvalRepo.ListByFlat(ctx, flat)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data := &ResidentDashboardData{}

	for _, v := range visitors {
		if v.Status == models.VisitorStatusPending {
			data.PendingArrivals = append(data.PendingArrivals, v)
		}
	}
	filter.SortVisitorsDesc(data.PendingArrivals, now)

	entries := buildEntries(visitors, approvals)
	r := filter.WindowRange(q.Window, filter.MonthRolling, q.CustomStart, q.CustomEnd, now)
	entries = filter.EntriesInRange(entries, r, now)
	entries = filter.EntriesByHistoryStatus(entries, q.Status)
	entries = filter.SearchEntries(entries, q.Search)
	filter.SortEntriesDesc(entries, now)
	data.History = entries

	data.Approvals = make([]*models.PreApprovalResponse, len(approvals))
	for i := range approvals {
		data.Approvals[i] = approvals[i].ToResponse(true)
	}

	if data.UnreadCount, err = s.notifRepo.CountUnreadForResident(ctx, flat); err != nil {
		return nil, err
	}
	return data, nil
}

// ============================================================
// Security Dashboard
// ============================================================

// SecurityDashboardData represents the gate dashboard
type SecurityDashboardData struct {
	// Stat cards
	TotalToday     int64 `json:"total_today"`
	InsideNow      int64 `json:"inside_now"`
	OutToday       int64 `json:"out_today"`
	ComingToday    int64 `json:"coming_today"`
	ExpiredTotal   int64 `json:"expired_total"`
	CancelledToday int64 `json:"cancelled_today"`

	// The entry list under the cards, after the view controls
	Entries []filter.Entry `json:"entries"`

	UnreadCount int64 `json:"unread_count"`
}

// GetSecurityDashboard returns the gate dashboard. Stat cards count today's
// records; the card sub-filter narrows the entry list below them.
func (s *DashboardService) GetSecurityDashboard(ctx context.Context, q ViewQuery) (*SecurityDashboardData, error) {
	visitors, err := s.visitorRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	approvals, err := s.approvalRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data := &SecurityDashboardData{}

	todayRange := filter.WindowRange(filter.WindowToday, filter.MonthCalendar, nil, nil, now)
	todayEntries := buildEntries(
		filter.VisitorsInRange(visitors, todayRange, now),
		filter.ApprovalsInRange(approvals, todayRange, now),
	)
	data.TotalToday = int64(len(todayEntries))
	data.OutToday = int64(len(filter.EntriesByCard(todayEntries, filter.CardOut)))
	data.ComingToday = int64(len(filter.EntriesByCard(todayEntries, filter.CardComing)))
	data.CancelledToday = int64(len(filter.EntriesByCard(todayEntries, filter.CardCancelled)))

	allEntries := buildEntries(visitors, approvals)
	data.InsideNow = int64(len(filter.EntriesByCard(allEntries, filter.CardInside)))
	data.ExpiredTotal = int64(len(filter.EntriesByCard(allEntries, filter.CardExpired)))

	r := filter.WindowRange(q.Window, filter.MonthCalendar, q.CustomStart, q.CustomEnd, now)
	entries := filter.EntriesInRange(allEntries, r, now)
	entries = filter.EntriesByCard(entries, q.Card)
	entries = filter.SearchEntries(entries, q.Search)
	filter.SortEntriesDesc(entries, now)
	data.Entries = entries

	if data.UnreadCount, err = s.notifRepo.CountUnreadForSecurity(ctx); err != nil {
		return nil, err
	}
	return data, nil
}

// buildEntries merges the two record kinds into tagged entries
func buildEntries(visitors []models.Visitor, approvals []models.PreApproval) []filter.Entry {
	entries := make([]filter.Entry, 0, len(visitors)+len(approvals))
	for _, v := range visitors {
		entries = append(entries, filter.VisitorEntry(v))
	}
	for _, p := range approvals {
		entries = append(entries, filter.ApprovalEntry(p))
	}
	return entries
}
