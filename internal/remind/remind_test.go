package remind

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoapply-engine/internal/calendar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureProvider struct {
	events []calendar.Event
	err    error
}

func (p *captureProvider) Insert(_ context.Context, ev calendar.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func TestScheduleFollowUp(t *testing.T) {
	p := &captureProvider{}
	s := &Scheduler{Provider: p, Timezone: "America/New_York"}

	applied := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	ok := s.ScheduleFollowUp(context.Background(), "Security Engineer", "Acme", applied, 5)
	require.True(t, ok)
	require.Len(t, p.events, 1)

	ev := p.events[0]
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "Follow up on Security Engineer application at Acme", ev.Title)
	assert.Contains(t, ev.Description, "5 days")
	assert.Contains(t, ev.Description, "Security Engineer")
	assert.Contains(t, ev.Description, "Acme")

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	// applied 2026-03-10 local, follow-up 5 days later at 10:00 local
	assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, loc).Format(time.RFC3339), ev.Start.Format(time.RFC3339))
	assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
	assert.Equal(t, "America/New_York", ev.Timezone)

	require.Len(t, ev.Reminders, 2)
	assert.Equal(t, calendar.Reminder{Method: "email", Minutes: 24 * 60}, ev.Reminders[0])
	assert.Equal(t, calendar.Reminder{Method: "popup", Minutes: 30}, ev.Reminders[1])
}

func TestScheduleFollowUpDefaultsDelay(t *testing.T) {
	p := &captureProvider{}
	s := &Scheduler{Provider: p}

	applied := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.True(t, s.ScheduleFollowUp(context.Background(), "Analyst", "Globex", applied, 0))
	require.Len(t, p.events, 1)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	want := time.Date(2026, 6, 6, 10, 0, 0, 0, loc)
	assert.True(t, p.events[0].Start.Equal(want))
}

func TestScheduleFollowUpProviderError(t *testing.T) {
	s := &Scheduler{Provider: &captureProvider{err: errors.New("api down")}}
	ok := s.ScheduleFollowUp(context.Background(), "Analyst", "Globex", time.Now(), 5)
	assert.False(t, ok, "a failed reminder degrades, it does not escalate")
}

func TestScheduleFollowUpNoProvider(t *testing.T) {
	var s *Scheduler
	assert.False(t, s.ScheduleFollowUp(context.Background(), "Analyst", "Globex", time.Now(), 5))
	assert.False(t, (&Scheduler{}).ScheduleFollowUp(context.Background(), "Analyst", "Globex", time.Now(), 5))
}

func TestScheduleFollowUpBadTimezone(t *testing.T) {
	s := &Scheduler{Provider: &captureProvider{}, Timezone: "Not/AZone"}
	assert.False(t, s.ScheduleFollowUp(context.Background(), "Analyst", "Globex", time.Now(), 5))
}
