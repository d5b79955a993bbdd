package core

import "time"

// StreakDays computes the consecutive-day completion streak from task
// history: the number of consecutive calendar days, ending today, with at
// least one completed task. A day with no completion yet today does not
// break a streak that ran through yesterday.
func StreakDays(tasks []Task, now time.Time) int {
	days := make(map[string]struct{})
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		days[t.CompletedAt.In(now.Location()).Format(DateLayout)] = struct{}{}
	}
	if len(days) == 0 {
		return 0
	}

	day := now
	if _, ok := days[day.Format(DateLayout)]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := days[day.Format(DateLayout)]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}
