package room

import (
	"context"

	"roombooking/config"
	"roombooking/models"
)

// StaticRepository serves a fixed catalog, typically seeded from config.
type StaticRepository struct {
	rooms map[string]models.Room
}

func NewStaticRepository(rooms ...models.Room) *StaticRepository {
	m := make(map[string]models.Room, len(rooms))
	for _, r := range rooms {
		m[r.ID] = r
	}
	return &StaticRepository{rooms: m}
}

// FromSeeds builds the catalog from the ROOMS config entries.
func FromSeeds(seeds []config.RoomSeed) *StaticRepository {
	rooms := make([]models.Room, 0, len(seeds))
	for _, s := range seeds {
		rooms = append(rooms, models.Room{
			ID:       s.ID,
			Name:     s.Name,
			Building: s.Building,
			Floor:    s.Floor,
			Capacity: s.Capacity,
			Active:   s.Active,
		})
	}
	return NewStaticRepository(rooms...)
}

func (s *StaticRepository) GetByID(_ context.Context, roomID string) (*models.Room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &r, nil
}
