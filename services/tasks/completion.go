package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeBookingComplete = "booking:complete"
	TypeBookingSweep    = "booking:sweep"
)

// CompletionPayload identifies the booking to complete once its end passes.
type CompletionPayload struct {
	BookingID string    `json:"booking_id"`
	End       time.Time `json:"end"`
}

// NewCompletionTask builds a task that fires at the booking's end. The task id
// includes the end so a rescheduled booking gets a fresh task.
func NewCompletionTask(bookingID string, end time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(CompletionPayload{BookingID: bookingID, End: end.UTC()})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeBookingComplete, b)
	opts := []asynq.Option{
		asynq.ProcessAt(end),
		asynq.TaskID(fmt.Sprintf("complete:%s:%d", bookingID, end.Unix())),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

func ParseCompletionPayload(task *asynq.Task) (CompletionPayload, error) {
	var p CompletionPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid completion payload: %w", err)
	}
	if p.BookingID == "" {
		return p, errors.New("completion payload without booking id")
	}
	return p, nil
}

// NewSweepTask builds the periodic task that persists completion of elapsed bookings.
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TypeBookingSweep, nil)
}

// AsynqScheduler enqueues completion tasks on the asynq Redis queue.
type AsynqScheduler struct {
	client *asynq.Client
}

func NewAsynqScheduler(client *asynq.Client) *AsynqScheduler {
	return &AsynqScheduler{client: client}
}

func (s *AsynqScheduler) ScheduleCompletion(ctx context.Context, bookingID string, end time.Time) error {
	task, opts, err := NewCompletionTask(bookingID, end)
	if err != nil {
		return err
	}
	if _, err := s.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("enqueue completion task: %w", err)
	}
	return nil
}
