package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooking/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepository reads rooms from the "rooms" collection owned by the room service.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(client *mongo.Client, dbName string) *MongoRepository {
	return &MongoRepository{coll: client.Database(dbName).Collection("rooms")}
}

func (repo *MongoRepository) GetByID(ctx context.Context, roomID string) (*models.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var r models.Room
	err := repo.coll.FindOne(ctx, bson.M{"id": roomID}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching room %s: %w", roomID, err)
	}
	return &r, nil
}
