package reminders

import "time"

// DateOnly normaliza t a medianoche UTC conservando el día calendario de t.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDue = last + cycleDays días calendario.
func NextDue(last time.Time, cycleDays int) time.Time {
	return DateOnly(last).AddDate(0, 0, cycleDays)
}

// nextFor recalcula la próxima fecha; sin last date no hay próxima.
func nextFor(last *time.Time, cycleDays int) *time.Time {
	if last == nil {
		return nil
	}
	n := NextDue(*last, cycleDays)
	return &n
}
