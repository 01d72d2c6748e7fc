package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/iitp-cep/portal-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func seedCourse(repo *fakeRepository) *models.Course {
	return repo.addCourse(&models.Course{Title: "Intro to CS", Code: "CS101"})
}

func TestAggregatorLiveAssessments(t *testing.T) {
	repo := newFakeRepository()
	course := seedCourse(repo)
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "Live quiz",
		OpenDate: yesterday, CloseDate: &tomorrow, IsLive: true,
	})
	repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "Draft quiz",
		OpenDate: yesterday, CloseDate: &tomorrow, IsLive: false,
	})
	repo.addAssessment(&models.Assessment{
		Kind: models.KindExam, CourseID: course.ID, Title: "Future exam",
		OpenDate: tomorrow, IsLive: true,
	})

	svc := NewAggregatorService(repo, testLogger())
	resp, err := svc.LiveAssessments(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, resp.Quizzes, 1)
	assert.Equal(t, "Live quiz", resp.Quizzes[0].Title)
	assert.Equal(t, "CS101: Intro to CS", resp.Quizzes[0].CourseName)
	assert.Empty(t, resp.Exams, "not-yet-open exam must not be listed")
	assert.Empty(t, resp.Assignments)
}

func TestAggregatorTimelineOrdering(t *testing.T) {
	repo := newFakeRepository()
	course := seedCourse(repo)
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	soon := now.AddDate(0, 0, 2)
	later := now.AddDate(0, 0, 10)
	past := now.AddDate(0, 0, -2)

	repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "No deadline",
		OpenDate: past, IsLive: true,
	})
	repo.addAssessment(&models.Assessment{
		Kind: models.KindExam, CourseID: course.ID, Title: "Due later",
		OpenDate: past, CloseDate: &later, IsLive: false,
	})
	repo.addAssessment(&models.Assessment{
		Kind: models.KindAssignment, CourseID: course.ID, Title: "Due soon",
		OpenDate: past, CloseDate: &soon, IsLive: true,
	})
	repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "Already closed",
		OpenDate: past.AddDate(0, 0, -5), CloseDate: &past, IsLive: true,
	})

	svc := NewAggregatorService(repo, testLogger())
	entries, err := svc.Timeline(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, entries, 3, "closed assessments drop off the timeline")
	assert.Equal(t, "Due soon", entries[0].Title)
	assert.Equal(t, "Due later", entries[1].Title)
	assert.Equal(t, "No deadline", entries[2].Title, "no deadline sorts last")
	assert.Equal(t, OpenIndefinitely, entries[2].DateGroup)
	assert.Equal(t, soon.Format("2006-01-02"), entries[0].DateGroup)

	// Draft entries stay on the timeline, badged via IsLive.
	assert.False(t, entries[1].IsLive)
}

func TestAggregatorMonthCalendarLayout(t *testing.T) {
	repo := newFakeRepository()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	svc := NewAggregatorService(repo, testLogger())
	cal, err := svc.MonthCalendar(context.Background(), 2025, time.March, now)
	require.NoError(t, err)

	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 3, cal.Month)
	assert.Equal(t, "March", cal.MonthName)

	// March 2025 starts on a Saturday: five leading blanks Monday-first.
	firstWeek := cal.Weeks[0]
	require.Len(t, firstWeek, 7)
	for i := 0; i < 5; i++ {
		assert.Contains(t, firstWeek[i].Classes, "dayblank")
		assert.Equal(t, 0, firstWeek[i].DayNum)
	}
	assert.Equal(t, 1, firstWeek[5].DayNum)
	assert.Contains(t, firstWeek[5].Classes, "weekend")

	// Every week row is exactly seven cells.
	for _, week := range cal.Weeks {
		assert.Len(t, week, 7)
	}

	// The 15th is today and a Saturday.
	var today *DayCell
	for _, week := range cal.Weeks {
		for _, cell := range week {
			if cell.DayNum == 15 {
				today = cell
			}
		}
	}
	require.NotNil(t, today)
	assert.Contains(t, today.Classes, "today")
	assert.Contains(t, today.Classes, "weekend")
}

func TestAggregatorMonthCalendarRollover(t *testing.T) {
	repo := newFakeRepository()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := NewAggregatorService(repo, testLogger())

	jan, err := svc.MonthCalendar(context.Background(), 2025, time.January, now)
	require.NoError(t, err)
	assert.Equal(t, 2024, jan.PrevYear)
	assert.Equal(t, 12, jan.PrevMonth)
	assert.Equal(t, 2025, jan.NextYear)
	assert.Equal(t, 2, jan.NextMonth)

	dec, err := svc.MonthCalendar(context.Background(), 2025, time.December, now)
	require.NoError(t, err)
	assert.Equal(t, 2026, dec.NextYear)
	assert.Equal(t, 1, dec.NextMonth)
}

func TestAggregatorMonthCalendarInvalidFallsBackToNow(t *testing.T) {
	repo := newFakeRepository()
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	svc := NewAggregatorService(repo, testLogger())

	cal, err := svc.MonthCalendar(context.Background(), 0, 0, now)
	require.NoError(t, err)
	assert.Equal(t, 2025, cal.Year)
	assert.Equal(t, 6, cal.Month)
}

func TestAggregatorMonthCalendarEvents(t *testing.T) {
	repo := newFakeRepository()
	course := seedCourse(repo)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	open := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	closeDate := time.Date(2025, 3, 20, 18, 0, 0, 0, time.UTC)
	repo.addAssessment(&models.Assessment{
		Kind: models.KindQuiz, CourseID: course.ID, Title: "Midterm quiz",
		OpenDate: open, CloseDate: &closeDate, IsLive: true,
	})
	repo.addEvent(&models.CalendarEvent{
		Title:     "Guest lecture",
		Date:      datatypes.Date(time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)),
		EventType: models.EventNotice,
	})

	svc := NewAggregatorService(repo, testLogger())
	cal, err := svc.MonthCalendar(context.Background(), 2025, time.March, now)
	require.NoError(t, err)

	byDay := map[int]*DayCell{}
	for _, week := range cal.Weeks {
		for _, cell := range week {
			if cell.DayNum > 0 {
				byDay[cell.DayNum] = cell
			}
		}
	}

	// Day 5 carries the standalone event and the quiz opening, sorted by
	// time of day.
	require.Len(t, byDay[5].Events, 2)
	assert.Contains(t, byDay[5].Classes, "hasevent")
	assert.Equal(t, "General Notice", byDay[5].Events[0].Label)
	assert.Equal(t, "Quiz opens", byDay[5].Events[1].Label)

	// Same assessment contributes a second entry on its close day.
	require.Len(t, byDay[20].Events, 1)
	assert.Equal(t, "Quiz closes", byDay[20].Events[0].Label)

	assert.NotContains(t, byDay[6].Classes, "hasevent")
}
