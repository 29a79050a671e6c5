package booking

import (
	"sort"

	"roombooking/models"
)

// HasConflict returns every interval in existing that overlaps candidate, in
// input order, skipping the booking identified by excludeID. Intervals are
// half-open, so one ending exactly when another starts is not a conflict.
//
// existing is expected in start order. A committed set never overlaps itself,
// which makes the ends non-decreasing as well; in that case the first
// possible overlap is found by binary search and the scan stops at the first
// interval starting at or after candidate.End. The order is verified first,
// so the whole call stays linear in len(existing); the search only saves
// overlap comparisons. Any other input is scanned linearly.
func HasConflict(candidate models.Interval, existing []models.Interval, excludeID string) []models.Interval {
	if !sortedByStartAndEnd(existing) {
		return linearConflicts(candidate, existing, excludeID)
	}

	i := sort.Search(len(existing), func(i int) bool {
		return existing[i].End.After(candidate.Start)
	})

	var conflicts []models.Interval
	for ; i < len(existing) && existing[i].Start.Before(candidate.End); i++ {
		if excludeID != "" && existing[i].BookingID == excludeID {
			continue
		}
		conflicts = append(conflicts, existing[i])
	}
	return conflicts
}

func linearConflicts(candidate models.Interval, existing []models.Interval, excludeID string) []models.Interval {
	var conflicts []models.Interval
	for _, iv := range existing {
		if excludeID != "" && iv.BookingID == excludeID {
			continue
		}
		if candidate.Overlaps(iv) {
			conflicts = append(conflicts, iv)
		}
	}
	return conflicts
}

func sortedByStartAndEnd(list []models.Interval) bool {
	for i := 1; i < len(list); i++ {
		if list[i].Start.Before(list[i-1].Start) || list[i].End.Before(list[i-1].End) {
			return false
		}
	}
	return true
}
