package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionTaskPayload(t *testing.T) {
	end := time.Date(2030, 1, 14, 10, 0, 0, 0, time.UTC)

	task, opts, err := NewCompletionTask("b-1", end)
	require.NoError(t, err)
	assert.Equal(t, TypeBookingComplete, task.Type())
	assert.Len(t, opts, 3)

	p, err := ParseCompletionPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "b-1", p.BookingID)
	assert.True(t, p.End.Equal(end))
}

func TestParseCompletionPayloadRejectsBadInput(t *testing.T) {
	_, err := ParseCompletionPayload(asynq.NewTask(TypeBookingComplete, []byte("{")))
	assert.Error(t, err)

	_, err = ParseCompletionPayload(asynq.NewTask(TypeBookingComplete, []byte(`{"end":"2030-01-14T10:00:00Z"}`)))
	assert.Error(t, err)
}
