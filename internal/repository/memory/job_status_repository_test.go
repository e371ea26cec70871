package memory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestJobStatusLifecycle(t *testing.T) {
	repo := NewJobStatusRepository()
	docId := uuid.New()

	job := repo.Create("task-1", docId)
	assert.Equal(t, JobStatePending, job.State)
	assert.Equal(t, docId, job.DocumentId)

	repo.SetState("task-1", JobStateInProgress, "")
	got, found := repo.Get("task-1")
	assert.True(t, found)
	assert.Equal(t, JobStateInProgress, got.State)
	assert.Nil(t, got.FinishedAt)

	repo.SetState("task-1", JobStateSucceeded, "")
	got, _ = repo.Get("task-1")
	assert.Equal(t, JobStateSucceeded, got.State)
	assert.NotNil(t, got.FinishedAt)
}

func TestJobStatusAttempts(t *testing.T) {
	repo := NewJobStatusRepository()
	repo.Create("task-2", uuid.New())

	assert.Equal(t, 1, repo.IncrementAttempts("task-2"))
	assert.Equal(t, 2, repo.IncrementAttempts("task-2"))
	assert.Equal(t, 0, repo.IncrementAttempts("missing"))
}

func TestJobStatusCancel(t *testing.T) {
	repo := NewJobStatusRepository()
	repo.Create("task-3", uuid.New())

	assert.False(t, repo.IsCanceled("task-3"))
	assert.True(t, repo.MarkCanceled("task-3"))
	assert.True(t, repo.IsCanceled("task-3"))

	// terminal jobs cannot be canceled
	repo.Create("task-4", uuid.New())
	repo.SetState("task-4", JobStateFailed, "boom")
	assert.False(t, repo.MarkCanceled("task-4"))

	assert.False(t, repo.MarkCanceled("missing"))
}

func TestJobStatusGetReturnsSnapshot(t *testing.T) {
	repo := NewJobStatusRepository()
	repo.Create("task-5", uuid.New())

	got, _ := repo.Get("task-5")
	got.State = JobStateFailed
	got.Error = "mutated by caller"

	fresh, _ := repo.Get("task-5")
	assert.Equal(t, JobStatePending, fresh.State)
	assert.Empty(t, fresh.Error)
}

func TestJobStatusConcurrentAccess(t *testing.T) {
	repo := NewJobStatusRepository()
	repo.Create("task-6", uuid.New())

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			repo.SetState("task-6", JobStateInProgress, "")
			repo.IncrementAttempts("task-6")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if job, found := repo.Get("task-6"); found {
				_ = job.State
				_ = job.Error
			}
			repo.IsCanceled("task-6")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			repo.MarkCanceled("task-6")
		}
	}()

	wg.Wait()

	job, found := repo.Get("task-6")
	assert.True(t, found)
	assert.Equal(t, 500, job.Attempts)
}
