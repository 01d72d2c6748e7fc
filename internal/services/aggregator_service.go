package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/iitp-cep/portal-service/internal/models"
	"github.com/iitp-cep/portal-service/internal/repositories"
)

// OpenIndefinitely is the timeline group for assessments without a
// deadline.
const OpenIndefinitely = "Open Indefinitely"

type aggregatorService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewAggregatorService(repo repositories.Repository, logger *slog.Logger) AggregatorService {
	return &aggregatorService{repo: repo, logger: logger}
}

func (s *aggregatorService) LiveAssessments(ctx context.Context, now time.Time) (*LiveAssessmentsResponse, error) {
	resp := &LiveAssessmentsResponse{
		Assignments: []*LiveAssessmentEntry{},
		Quizzes:     []*LiveAssessmentEntry{},
		Exams:       []*LiveAssessmentEntry{},
	}

	for _, kind := range models.Kinds() {
		rows, err := s.repo.Assessment().ListLive(ctx, nil, kind, now)
		if err != nil {
			return nil, fmt.Errorf("failed to load live %s list: %w", kind, err)
		}

		entries := make([]*LiveAssessmentEntry, 0, len(rows))
		for _, a := range rows {
			entries = append(entries, toLiveEntry(a))
		}

		switch kind {
		case models.KindAssignment:
			resp.Assignments = entries
		case models.KindQuiz:
			resp.Quizzes = entries
		case models.KindExam:
			resp.Exams = entries
		}
	}
	return resp, nil
}

// Timeline lists everything whose deadline has not passed, live or not.
// Draft entries stay visible so upcoming work shows before it opens;
// IsLive lets clients badge them.
func (s *aggregatorService) Timeline(ctx context.Context, now time.Time) ([]*TimelineEntry, error) {
	rows, err := s.repo.Assessment().ListClosingAfter(ctx, nil, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}

	entries := make([]*TimelineEntry, 0, len(rows))
	for _, a := range rows {
		group := OpenIndefinitely
		if a.CloseDate != nil {
			group = a.CloseDate.Format("2006-01-02")
		}
		entries = append(entries, &TimelineEntry{
			ID:         a.ID,
			Kind:       a.Kind,
			Title:      a.Title,
			CourseName: a.Course.DisplayName(),
			CloseDate:  a.CloseDate,
			IsLive:     a.IsLive,
			DateGroup:  group,
		})
	}

	// Ascending by deadline; no deadline sorts last.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].CloseDate, entries[j].CloseDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return entries, nil
}

func (s *aggregatorService) MonthCalendar(ctx context.Context, year int, month time.Month, now time.Time) (*MonthCalendarResponse, error) {
	if year < 1 || month < time.January || month > time.December {
		year, month = now.Year(), now.Month()
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	dayEvents, err := s.collectMonthEvents(ctx, year, month)
	if err != nil {
		return nil, err
	}

	// Monday-first column index for day 1.
	lead := (int(first.Weekday()) + 6) % 7

	cells := make([]*DayCell, 0, 42)
	for i := 0; i < lead; i++ {
		cells = append(cells, &DayCell{Classes: []string{"dayblank"}})
	}
	for day := 1; day <= daysInMonth; day++ {
		col := (lead + day - 1) % 7
		classes := []string{"day"}
		if year == now.Year() && month == now.Month() && day == now.Day() {
			classes = append(classes, "today")
		}
		if col >= 5 {
			classes = append(classes, "weekend")
		}
		events := dayEvents[day]
		if len(events) > 0 {
			classes = append(classes, "hasevent")
		}
		cells = append(cells, &DayCell{DayNum: day, Classes: classes, Events: events})
	}
	for len(cells)%7 != 0 {
		cells = append(cells, &DayCell{Classes: []string{"dayblank"}})
	}

	weeks := make([][]*DayCell, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}

	prev := first.AddDate(0, -1, 0)
	next := first.AddDate(0, 1, 0)

	return &MonthCalendarResponse{
		Year:      year,
		Month:     int(month),
		MonthName: month.String(),
		Weeks:     weeks,
		PrevYear:  prev.Year(),
		PrevMonth: int(prev.Month()),
		NextYear:  next.Year(),
		NextMonth: int(next.Month()),
	}, nil
}

func (s *aggregatorService) Dashboard(ctx context.Context, year int, month time.Month, now time.Time) (*DashboardResponse, error) {
	live, err := s.LiveAssessments(ctx, now)
	if err != nil {
		return nil, err
	}
	timeline, err := s.Timeline(ctx, now)
	if err != nil {
		return nil, err
	}
	calendar, err := s.MonthCalendar(ctx, year, month, now)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{Live: live, Timeline: timeline, Calendar: calendar}, nil
}

// collectMonthEvents maps day-of-month to its entries: assessment opens
// and closes falling inside the month (an assessment opening and
// closing in the same month contributes two entries) plus standalone
// calendar events.
func (s *aggregatorService) collectMonthEvents(ctx context.Context, year int, month time.Month) (map[int][]*CalendarEntry, error) {
	dayEvents := make(map[int][]*CalendarEntry)

	assessments, err := s.repo.Assessment().ListForMonth(ctx, nil, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load month assessments: %w", err)
	}
	for _, a := range assessments {
		if a.OpenDate.Year() == year && a.OpenDate.Month() == month {
			dayEvents[a.OpenDate.Day()] = append(dayEvents[a.OpenDate.Day()], &CalendarEntry{
				Title:      a.Title,
				Label:      a.Kind.Display() + " opens",
				At:         a.OpenDate,
				CourseName: a.Course.DisplayName(),
			})
		}
		if a.CloseDate != nil && a.CloseDate.Year() == year && a.CloseDate.Month() == month {
			dayEvents[a.CloseDate.Day()] = append(dayEvents[a.CloseDate.Day()], &CalendarEntry{
				Title:      a.Title,
				Label:      a.Kind.Display() + " closes",
				At:         *a.CloseDate,
				CourseName: a.Course.DisplayName(),
			})
		}
	}

	calendarEvents, err := s.repo.CalendarEvent().ListForMonth(ctx, nil, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load month events: %w", err)
	}
	for _, e := range calendarEvents {
		at := time.Time(e.Date)
		courseName := ""
		if e.Course != nil {
			courseName = e.Course.DisplayName()
		}
		dayEvents[at.Day()] = append(dayEvents[at.Day()], &CalendarEntry{
			Title:      e.Title,
			Label:      e.EventTypeDisplay(),
			At:         at,
			CourseName: courseName,
		})
	}

	for day := range dayEvents {
		entries := dayEvents[day]
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].At.Before(entries[j].At)
		})
	}
	return dayEvents, nil
}

func toLiveEntry(a *models.Assessment) *LiveAssessmentEntry {
	return &LiveAssessmentEntry{
		ID:          a.ID,
		Kind:        a.Kind,
		Title:       a.Title,
		CourseName:  a.Course.DisplayName(),
		OpenDate:    a.OpenDate,
		CloseDate:   a.CloseDate,
		DurationMin: a.DurationMinutes,
	}
}
