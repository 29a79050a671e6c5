package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooking/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository implements Repository on the "bookings" collection.
type MongoRepository struct {
	bookingColl *mongo.Collection
}

// NewMongoRepository constructs the repository and makes sure its indexes exist.
func NewMongoRepository(client *mongo.Client, dbName string) (*MongoRepository, error) {
	repo := &MongoRepository{
		bookingColl: client.Database(dbName).Collection("bookings"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (repo *MongoRepository) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "status", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "start", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end", Value: 1}}},
	}

	if _, err := repo.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (repo *MongoRepository) IntervalsFor(ctx context.Context, roomID string) ([]models.Interval, error) {
	filter := bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": activeStatuses()},
	}
	return repo.findIntervals(ctx, filter)
}

func (repo *MongoRepository) IntervalsBetween(ctx context.Context, roomID string, from, to time.Time) ([]models.Interval, error) {
	filter := bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": activeStatuses()},
		"start":   bson.M{"$lt": to},
		"end":     bson.M{"$gt": from},
	}
	return repo.findIntervals(ctx, filter)
}

func (repo *MongoRepository) findIntervals(ctx context.Context, filter bson.M) ([]models.Interval, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}, {Key: "id", Value: 1}}).
		SetProjection(bson.M{"id": 1, "room_id": 1, "start": 1, "end": 1, "status": 1})
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching intervals: %w", err)
	}
	defer cursor.Close(ctx)

	intervals := make([]models.Interval, 0)
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("error decoding booking interval: %w", err)
		}
		intervals = append(intervals, b.Interval())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return intervals, nil
}

// Insert stores a new booking document; the unique index on id rejects duplicates.
func (repo *MongoRepository) Insert(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := repo.bookingColl.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateBookingID
		}
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

func (repo *MongoRepository) Remove(ctx context.Context, b *models.Booking) error {
	update := bson.M{"$set": bson.M{
		"status":              models.StatusCancelled,
		"cancelled_by":        b.CancelledBy,
		"cancellation_reason": b.CancellationReason,
		"cancelled_at":        b.CancelledAt,
		"updated_at":          b.UpdatedAt,
	}}
	return repo.updateActive(ctx, b.ID, update)
}

func (repo *MongoRepository) Replace(ctx context.Context, b *models.Booking) error {
	update := bson.M{"$set": bson.M{
		"start":       b.Start,
		"end":         b.End,
		"attendees":   b.Attendees,
		"title":       b.Title,
		"description": b.Description,
		"updated_at":  b.UpdatedAt,
	}}
	return repo.updateActive(ctx, b.ID, update)
}

// updateActive applies update only while the booking is still pending or confirmed.
func (repo *MongoRepository) updateActive(ctx context.Context, bookingID string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": bson.M{"$in": activeStatuses()}}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repo.missOrMismatch(ctx, bookingID)
	}
	return nil
}

// SetStatus flips the status only when the stored one equals from.
func (repo *MongoRepository) SetStatus(ctx context.Context, bookingID string, from, to models.Status, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": at}}
	res, err := repo.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("error setting status of booking %s: %w", bookingID, err)
	}
	if res.MatchedCount == 0 {
		return repo.missOrMismatch(ctx, bookingID)
	}
	return nil
}

func (repo *MongoRepository) missOrMismatch(ctx context.Context, bookingID string) error {
	n, err := repo.bookingColl.CountDocuments(ctx, bson.M{"id": bookingID})
	if err != nil {
		return fmt.Errorf("error checking booking %s: %w", bookingID, err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return ErrStatusMismatch
}

// Get retrieves a booking by its ID.
func (repo *MongoRepository) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	err := repo.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &booking, nil
}

func (repo *MongoRepository) List(ctx context.Context, f models.BookingFilter) (models.BookingPage, error) {
	f.Normalize()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.RoomID != "" {
		filter["room_id"] = f.RoomID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.From.IsZero() {
		filter["end"] = bson.M{"$gt": f.From}
	}
	if !f.To.IsZero() {
		filter["start"] = bson.M{"$lt": f.To}
	}

	total, err := repo.bookingColl.CountDocuments(ctx, filter)
	if err != nil {
		return models.BookingPage{}, fmt.Errorf("error counting bookings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start", Value: 1}, {Key: "id", Value: 1}}).
		SetSkip(int64(f.Offset())).
		SetLimit(int64(f.Size))
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return models.BookingPage{}, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Booking, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return models.BookingPage{}, fmt.Errorf("error decoding bookings: %w", err)
	}
	return models.BookingPage{Items: items, Total: total, Page: f.Page, Size: f.Size}, nil
}

func (repo *MongoRepository) Elapsed(ctx context.Context, now time.Time, limit int) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"status": models.StatusConfirmed, "end": bson.M{"$lte": now}}
	opts := options.Find().SetSort(bson.D{{Key: "end", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := repo.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding elapsed bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding elapsed bookings: %w", err)
	}
	return out, nil
}
