package room

import (
	"context"
	"errors"

	"roombooking/models"
)

var ErrRoomNotFound = errors.New("room not found")

// Repository is the read-only room catalog consumed by booking admission.
type Repository interface {
	GetByID(ctx context.Context, roomID string) (*models.Room, error)
}
