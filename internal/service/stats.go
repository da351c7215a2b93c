package service

import (
	"alcyxob/marathon-tracker/internal/domain"
	"sort"
)

// WeekStats is the distance summary of one plan week.
type WeekStats struct {
	DoneKm float64 `json:"doneKm"`
	GoalKm float64 `json:"goalKm"`
}

// WeekSummary is WeekStats for a given week plus how many weeks are left,
// counting the week itself.
type WeekSummary struct {
	Week           int `json:"week"`
	RemainingWeeks int `json:"remainingWeeks"`
	WeekStats
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Total     int `json:"total"`
}

// WeeklyStats sums the planned distance of the week's workouts and the done
// distance of its completed ones. Skipped workouts count towards the goal only.
func WeeklyStats(workouts []domain.Workout, week int) WeekStats {
	var stats WeekStats
	for _, w := range workouts {
		if w.Week != week {
			continue
		}
		stats.GoalKm += w.PlannedDistanceKm
		stats.DoneKm += w.DoneDistanceKm()
	}
	return stats
}

// WeeklySummaries returns one summary per week present in workouts, by week.
func WeeklySummaries(workouts []domain.Workout) []WeekSummary {
	byWeek := make(map[int]*WeekSummary)
	for _, w := range workouts {
		sum, ok := byWeek[w.Week]
		if !ok {
			sum = &WeekSummary{Week: w.Week}
			byWeek[w.Week] = sum
		}
		sum.GoalKm += w.PlannedDistanceKm
		sum.DoneKm += w.DoneDistanceKm()
		sum.Total++
		if w.Completed {
			sum.Completed++
		}
		if w.Skipped {
			sum.Skipped++
		}
	}

	summaries := make([]WeekSummary, 0, len(byWeek))
	totalWeeks := 0
	for _, sum := range byWeek {
		summaries = append(summaries, *sum)
		if sum.Week > totalWeeks {
			totalWeeks = sum.Week
		}
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Week < summaries[j].Week })
	for i := range summaries {
		summaries[i].RemainingWeeks = totalWeeks - summaries[i].Week + 1
	}
	return summaries
}
