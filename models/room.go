package models

// Room is the read-only view of a catalog room needed for admission.
type Room struct {
	ID       string `bson:"id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Building string `bson:"building,omitempty" json:"building,omitempty"`
	Floor    int    `bson:"floor,omitempty" json:"floor,omitempty"`
	Capacity int    `bson:"capacity" json:"capacity"`
	Active   bool   `bson:"is_active" json:"is_active"`
}
