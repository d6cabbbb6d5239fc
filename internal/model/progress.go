package model

import (
	"math"
	"time"
)

// Progress semantics, fixed across the whole subsystem:
//
//   - A course's progressPercent is time-weighted: watched hours over total
//     hours. It is always recomputed from those two fields and never taken
//     from a request.
//   - watchedHours is cumulative: progress reports add to the stored value.
//   - Per-module progress and contentProgressPercent are completion-count
//     based, driven by the completedContent set.

// TimePercent is the time-weighted percentage, clamped to [0,100]. A course
// with no measurable duration has no progress.
func TimePercent(watched, total float64) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(watched / total * 100))
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

func countPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// AddWatched records additional watched time. Negative increments are
// ignored so a misbehaving player cannot roll progress back.
func (e *EnrolledCourse) AddWatched(hours float64) {
	if hours <= 0 {
		return
	}
	e.WatchedHours += hours
}

// Recompute refreshes every derived field from watchedHours/totalHours.
// Call it after any mutation of the enrollment.
func (e *EnrolledCourse) Recompute() {
	e.ProgressPercent = TimePercent(e.WatchedHours, e.TotalHours)
	e.Progress = e.ProgressPercent > 0
	completed := e.TotalHours > 0 && e.WatchedHours >= e.TotalHours
	if completed && !e.IsCompleted {
		now := time.Now()
		e.CompletedAt = &now
	}
	if !completed {
		e.CompletedAt = nil
	}
	e.IsCompleted = completed
}

// MarkContent unions the given position keys into the completion set and
// refreshes the completed flags on the affected content, topic and module
// nodes. Re-marking an already complete item is a no-op on the set.
func (e *EnrolledCourse) MarkContent(keys []string) {
	if len(keys) == 0 {
		return
	}
	seen := make(map[string]bool, len(e.CompletedContent))
	for _, k := range e.CompletedContent {
		seen[k] = true
	}
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			e.CompletedContent = append(e.CompletedContent, k)
		}
	}
	e.applyCompletionFlags(seen)
}

func (e *EnrolledCourse) applyCompletionFlags(seen map[string]bool) {
	for mi := range e.Modules {
		moduleDone := true
		for ti := range e.Modules[mi].Topics {
			topicDone := true
			for ci := range e.Modules[mi].Topics[ti].Contents {
				done := seen[ContentKey(mi, ti, ci)]
				e.Modules[mi].Topics[ti].Contents[ci].Completed = done
				if !done {
					topicDone = false
				}
			}
			if len(e.Modules[mi].Topics[ti].Contents) == 0 {
				topicDone = false
			}
			e.Modules[mi].Topics[ti].Completed = topicDone
			if !topicDone {
				moduleDone = false
			}
		}
		if len(e.Modules[mi].Topics) == 0 {
			moduleDone = false
		}
		e.Modules[mi].Completed = moduleDone
	}
}

// ModuleProgress is the completion-count percentage per module, in module
// order.
func (e *EnrolledCourse) ModuleProgress() []int {
	out := make([]int, len(e.Modules))
	for mi, m := range e.Modules {
		total, done := 0, 0
		for _, t := range m.Topics {
			for _, c := range t.Contents {
				total++
				if c.Completed {
					done++
				}
			}
		}
		out[mi] = countPercent(done, total)
	}
	return out
}

// ContentProgressPercent is the completion-count percentage across the
// whole course.
func (e *EnrolledCourse) ContentProgressPercent() int {
	total, done := 0, 0
	for _, m := range e.Modules {
		for _, t := range m.Topics {
			for _, c := range t.Contents {
				total++
				if c.Completed {
					done++
				}
			}
		}
	}
	return countPercent(done, total)
}

// ColorFor maps a percentage to the traffic-light status color: above 85
// green, above 60 yellow, otherwise red.
func ColorFor(percent int) ProgressColor {
	switch {
	case percent > 85:
		return ColorGreen
	case percent > 60:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Rollup is the global aggregate over all enrollments: the hour-weighted
// percentage and its color. It is a pure function of the slice contents.
func Rollup(courses []EnrolledCourse) (int, ProgressColor) {
	var watched, total float64
	for i := range courses {
		watched += courses[i].WatchedHours
		total += courses[i].TotalHours
	}
	percent := TimePercent(watched, total)
	return percent, ColorFor(percent)
}

// RecomputeGlobal refreshes the user-level rollup from the enrollment list.
// Callers persist the student in the same transaction as the triggering
// write so the rollup is never stale relative to it.
func (s *CourseStudent) RecomputeGlobal() {
	s.GlobalProgressPercent, s.GlobalProgressColor = Rollup(s.EnrolledCourses)
}
