package crm

import (
	"sort"

	"crm-service/internal/model"
)

// DueAsOf filters calls to the open follow-ups due on or before the cutoff
// date. A call is due when it carries a follow-up date, has not been marked
// completed, and the date is <= cutoff. Dates are fixed-width zero-padded
// ISO strings, so plain string comparison orders them correctly.
//
// The result is sorted ascending by follow-up date; the sort is stable, so
// ties keep their original relative order. The full due set is returned,
// no pagination.
func DueAsOf(calls []model.Call, cutoff string) []model.Call {
	due := make([]model.Call, 0)
	for _, call := range calls {
		if call.Completed || call.FollowUpDate == "" {
			continue
		}
		if call.FollowUpDate <= cutoff {
			due = append(due, call)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].FollowUpDate < due[j].FollowUpDate
	})
	return due
}
