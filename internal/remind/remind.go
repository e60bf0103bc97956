package remind

import (
	"context"
	"fmt"
	"log"
	"time"

	"autoapply-engine/internal/calendar"

	"github.com/google/uuid"
)

const (
	// DefaultFollowUpDays is how long after applying to nudge the operator.
	DefaultFollowUpDays = 5

	followUpHour  = 10 // fixed local time-of-day
	windowMinutes = 30
)

// Scheduler registers follow-up reminders with a calendar provider. Every
// failure mode (auth, network, API rejection) collapses to a false return;
// a missed reminder is never allowed to sink the rest of the pipeline.
type Scheduler struct {
	Provider calendar.Provider
	Timezone string // defaults to America/New_York
}

func (s *Scheduler) ScheduleFollowUp(ctx context.Context, jobTitle, company string, applicationDate time.Time, delayDays int) bool {
	if s == nil || s.Provider == nil {
		return false
	}
	if delayDays <= 0 {
		delayDays = DefaultFollowUpDays
	}
	tz := s.Timezone
	if tz == "" {
		tz = "America/New_York"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("[remind] bad timezone %q: %v", tz, err)
		return false
	}

	d := applicationDate.In(loc).AddDate(0, 0, delayDays)
	start := time.Date(d.Year(), d.Month(), d.Day(), followUpHour, 0, 0, 0, loc)

	ev := calendar.Event{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("Follow up on %s application at %s", jobTitle, company),
		Description: fmt.Sprintf(
			"It's been %d days since you applied for the %s position at %s. Time to follow up!",
			delayDays, jobTitle, company),
		Start:    start,
		End:      start.Add(windowMinutes * time.Minute),
		Timezone: tz,
		Reminders: []calendar.Reminder{
			{Method: "email", Minutes: 24 * 60},
			{Method: "popup", Minutes: 30},
		},
	}

	cctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if err := s.Provider.Insert(cctx, ev); err != nil {
		log.Printf("[remind] schedule title=%q company=%q err=%v", jobTitle, company, err)
		return false
	}
	return true
}
