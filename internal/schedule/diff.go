// Package schedule holds the weekly-schedule comparison used to decide
// whether a class mutation should be broadcast to live clients.
package schedule

import "github.com/edunest/school-back/internal/models"

// Changed reports whether two weekly schedules differ. Entries are
// compared position by position, so reordering the same slots counts
// as a change. That matches the long-standing behavior of the admin
// dashboard and is kept as-is rather than switching to a set
// comparison keyed by (day, start_time).
func Changed(old, updated []models.WeeklyScheduleEntry) bool {
	if len(old) != len(updated) {
		return true
	}
	for i := range old {
		if old[i].Day != updated[i].Day ||
			old[i].StartTime != updated[i].StartTime ||
			old[i].EndTime != updated[i].EndTime ||
			old[i].Subject != updated[i].Subject {
			return true
		}
	}
	return false
}
