package engine

import (
	"testing"
	"time"

	"github.com/emilianohg/dutyroster/internal/models"
)

var (
	monday  = time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	tuesday = monday.AddDate(0, 0, 1)
)

const (
	mondayDate  = "2025-01-13"
	tuesdayDate = "2025-01-14"
	shiftStart  = models.Clock(9 * 60)
)

// shiftOf builds a shift starting at 09:00 lasting minutes.
func shiftOf(memberID int64, date string, minutes int) models.ShiftAssignment {
	return models.ShiftAssignment{
		MemberID: memberID,
		Date:     date,
		Start:    shiftStart,
		End:      shiftStart.Add(minutes),
		Class:    "day",
	}
}

func member(id int64, name string) models.Member {
	return models.Member{ID: id, Name: name}
}

func task(id int64, minutes int) models.Task {
	return models.Task{
		ID:              id,
		Code:            "",
		Name:            "task",
		DurationMinutes: minutes,
		MinCoverage:     1,
		Due:             models.Due{Kind: models.DueContinuous},
		Type:            models.TaskTypeOrdinary,
		Recurrence:      models.Recurrence{Kind: models.RecurrenceDaily},
	}
}

func number(n int) *int {
	return &n
}

func taskIDsOf(ranked []RankedTask) []int64 {
	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Task.ID
	}
	return ids
}

func assertIDs(t *testing.T, label string, got, want []int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s = %v, want %v", label, got, want)
		}
	}
}

func workloadFor(t *testing.T, resp Response, memberID int64) models.DailyWorkload {
	t.Helper()
	for _, w := range resp.Workloads {
		if w.MemberID == memberID {
			return w
		}
	}
	t.Fatalf("no workload for member %d in %+v", memberID, resp.Workloads)
	return models.DailyWorkload{}
}

func unassignedReason(t *testing.T, resp Response, taskID int64) string {
	t.Helper()
	for _, u := range resp.Unassigned {
		if u.Task.ID == taskID {
			return u.Reason
		}
	}
	t.Fatalf("task %d not in unassigned list %+v", taskID, resp.Unassigned)
	return ""
}
