package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooking/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository implements Repository on a relational store. Insert and Replace
// lock any overlapping active rows and refuse to commit an overlap, so several
// service instances sharing one database still keep the room schedule consistent.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Migrate() error {
	return r.db.AutoMigrate(&models.Booking{})
}

func (r *GormRepository) IntervalsFor(ctx context.Context, roomID string) ([]models.Interval, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Select("id", "room_id", "start_time", "end_time", "status").
		Where("room_id = ? AND status IN ?", roomID, activeStatuses()).
		Order("start_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching intervals: %w", err)
	}
	return toIntervals(rows), nil
}

func (r *GormRepository) IntervalsBetween(ctx context.Context, roomID string, from, to time.Time) ([]models.Interval, error) {
	var rows []models.Booking
	err := r.db.WithContext(ctx).
		Select("id", "room_id", "start_time", "end_time", "status").
		Where("room_id = ? AND status IN ?", roomID, activeStatuses()).
		Where("start_time < ? AND end_time > ?", to, from).
		Order("start_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error fetching intervals: %w", err)
	}
	return toIntervals(rows), nil
}

// Insert runs in a txn and prevents overlapping bookings by locking rows.
func (r *GormRepository) Insert(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Count(&n).Error; err != nil {
			return fmt.Errorf("error checking booking id: %w", err)
		}
		if n > 0 {
			return ErrDuplicateBookingID
		}
		if b.Status.Active() {
			if err := lockOverlap(tx, b.RoomID, b.ID, b.Start, b.End); err != nil {
				return err
			}
		}
		if err := tx.Create(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateBookingID
			}
			return fmt.Errorf("error creating booking: %w", err)
		}
		return nil
	})
}

func (r *GormRepository) Remove(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockActive(tx, b.ID); err != nil {
			return err
		}
		err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"status":              models.StatusCancelled,
			"cancelled_by":        b.CancelledBy,
			"cancellation_reason": b.CancellationReason,
			"cancelled_at":        b.CancelledAt,
			"updated_at":          b.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("error cancelling booking %s: %w", b.ID, err)
		}
		return nil
	})
}

func (r *GormRepository) Replace(ctx context.Context, b *models.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stored, err := lockActive(tx, b.ID)
		if err != nil {
			return err
		}
		if err := lockOverlap(tx, stored.RoomID, b.ID, b.Start, b.End); err != nil {
			return err
		}
		err = tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
			"start_time":  b.Start,
			"end_time":    b.End,
			"attendees":   b.Attendees,
			"title":       b.Title,
			"description": b.Description,
			"updated_at":  b.UpdatedAt,
		}).Error
		if err != nil {
			return fmt.Errorf("error updating booking %s: %w", b.ID, err)
		}
		return nil
	})
}

func (r *GormRepository) SetStatus(ctx context.Context, bookingID string, from, to models.Status, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", bookingID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		return fmt.Errorf("error setting status of booking %s: %w", bookingID, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", bookingID).Count(&n).Error; err != nil {
		return fmt.Errorf("error checking booking %s: %w", bookingID, err)
	}
	if n == 0 {
		return ErrBookingNotFound
	}
	return ErrStatusMismatch
}

func (r *GormRepository) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.WithContext(ctx).First(&b, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", bookingID, err)
	}
	return &b, nil
}

func (r *GormRepository) List(ctx context.Context, f models.BookingFilter) (models.BookingPage, error) {
	f.Normalize()
	qb := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.RoomID != "" {
		qb = qb.Where("room_id = ?", f.RoomID)
	}
	if f.UserID != "" {
		qb = qb.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		qb = qb.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		qb = qb.Where("end_time > ?", f.From)
	}
	if !f.To.IsZero() {
		qb = qb.Where("start_time < ?", f.To)
	}

	var total int64
	if err := qb.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return models.BookingPage{}, fmt.Errorf("error counting bookings: %w", err)
	}
	items := make([]models.Booking, 0)
	if err := qb.Session(&gorm.Session{}).Order("start_time ASC, id ASC").Limit(f.Size).Offset(f.Offset()).Find(&items).Error; err != nil {
		return models.BookingPage{}, fmt.Errorf("error listing bookings: %w", err)
	}
	return models.BookingPage{Items: items, Total: total, Page: f.Page, Size: f.Size}, nil
}

func (r *GormRepository) Elapsed(ctx context.Context, now time.Time, limit int) ([]models.Booking, error) {
	qb := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", models.StatusConfirmed, now).
		Order("end_time ASC")
	if limit > 0 {
		qb = qb.Limit(limit)
	}
	var out []models.Booking
	if err := qb.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("error finding elapsed bookings: %w", err)
	}
	return out, nil
}

// lockActive locks the booking row and requires it to be pending or confirmed.
func lockActive(tx *gorm.DB, bookingID string) (*models.Booking, error) {
	var stored models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&stored, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error locking booking %s: %w", bookingID, err)
	}
	if !stored.Status.Active() {
		return nil, ErrStatusMismatch
	}
	return &stored, nil
}

// lockOverlap locks any active row of the room overlapping [start, end) other than excludeID.
func lockOverlap(tx *gorm.DB, roomID, excludeID string, start, end time.Time) error {
	var existing models.Booking
	err := tx.Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_id = ? AND status IN ? AND id <> ?", roomID, activeStatuses(), excludeID).
		Where("start_time < ? AND end_time > ?", end, start).
		Take(&existing).Error
	if err == nil {
		return ErrOverlap
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("error checking overlap: %w", err)
	}
	return nil
}

func toIntervals(rows []models.Booking) []models.Interval {
	out := make([]models.Interval, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Interval())
	}
	return out
}
