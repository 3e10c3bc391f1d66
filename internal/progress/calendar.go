package progress

import (
	"github.com/snapsolve/snapsolve/internal/clock"
)

// CalendarDay is one cell of the streak calendar.
type CalendarDay struct {
	Day     string `json:"day"`
	Weekday string `json:"weekday"`
	IsToday bool   `json:"isToday"`
	Active  bool   `json:"active"`
}

// StreakCalendar returns the last n days, oldest first, marking the days
// covered by the current streak.
func (s *Store) StreakCalendar(n int) []CalendarDay {
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	today := clock.Today(s.clock)
	streak := s.profile.Streak
	last := clock.Day(s.profile.LastActiveDate)
	s.mu.Unlock()

	var first clock.Day
	if streak > 0 && !last.Time().IsZero() {
		first = last.AddDays(-(streak - 1))
	}

	days := make([]CalendarDay, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		active := first != "" && d.String() >= first.String() && d.String() <= last.String()
		days = append(days, CalendarDay{
			Day:     d.String(),
			Weekday: d.Time().Weekday().String()[:3],
			IsToday: i == 0,
			Active:  active,
		})
	}
	return days
}
