package eventlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCleanupJob_Process(t *testing.T) {
	mockRepo := new(MockRepository)
	job := NewCleanupJob(NewService(mockRepo), 10)
	mockRepo.On("CleanupOldEvents", mock.Anything, 10).Return(int64(100), nil).Twice()

	require.NoError(t, job.Process(context.Background()))
	require.NoError(t, job.Process(context.Background()))

	assert.Equal(t, int64(200), job.TotalDeleted())
	assert.WithinDuration(t, time.Now(), job.LastRun(), 2*time.Second)
	mockRepo.AssertExpectations(t)
}

func TestCleanupJob_ProcessError(t *testing.T) {
	mockRepo := new(MockRepository)
	job := NewCleanupJob(NewService(mockRepo), 3)
	mockRepo.On("CleanupOldEvents", mock.Anything, 3).Return(int64(0), errors.New("db gone"))

	assert.Error(t, job.Process(context.Background()))
	assert.Zero(t, job.TotalDeleted())
	assert.True(t, job.LastRun().IsZero())
}

func TestCleanupJob_SkipsOverlappingPass(t *testing.T) {
	mockRepo := new(MockRepository)
	job := NewCleanupJob(NewService(mockRepo), 1)

	job.running.Store(true)
	require.NoError(t, job.Process(context.Background()))

	mockRepo.AssertNotCalled(t, "CleanupOldEvents", mock.Anything, mock.Anything)
}
