package booking

import (
	"time"

	"roombooking/models"
)

var transitions = map[models.Status][]models.Status{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCancelled, models.StatusCompleted},
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// EffectiveStatus is the status observed at now: a confirmed booking whose end
// has passed reads as completed whether or not the sweep has persisted it.
func EffectiveStatus(b *models.Booking, now time.Time) models.Status {
	if b.Status == models.StatusConfirmed && !now.Before(b.End) {
		return models.StatusCompleted
	}
	return b.Status
}

// withEffectiveStatus returns a copy of b carrying its effective status.
func withEffectiveStatus(b *models.Booking, now time.Time) *models.Booking {
	out := *b
	out.Status = EffectiveStatus(b, now)
	return &out
}
