// Package engine assigns a day's tasks to the members scheduled that day.
//
// The engine is a pure function of its inputs: it performs no I/O, holds no global
// state and produces identical output for identical input.
package engine

import "github.com/emilianohg/dutyroster/internal/models"

// Capacity pairs an active member with the minutes available to them on the day.
type Capacity struct {
	Member  models.Member
	Minutes int
}

// ResolveCapacity sums the member's shifts on date and deducts fixed commitments.
// scheduled is false when the member has no shift that day.
func ResolveCapacity(member models.Member, shifts []models.ShiftAssignment, date string) (minutes int, scheduled bool) {
	total := 0
	for _, s := range shifts {
		if s.MemberID != member.ID || s.Date != date {
			continue
		}
		scheduled = true
		total += models.Span(s.Start, s.End)
	}
	if !scheduled {
		return 0, false
	}
	return max(0, total-member.FixedMinutes), true
}

// ActiveMembers returns the members scheduled on date, in input order.
func ActiveMembers(members []models.Member, shifts []models.ShiftAssignment, date string) []Capacity {
	active := make([]Capacity, 0, len(members))
	for _, m := range members {
		minutes, ok := ResolveCapacity(m, shifts, date)
		if !ok {
			continue
		}
		active = append(active, Capacity{Member: m, Minutes: minutes})
	}
	return active
}
