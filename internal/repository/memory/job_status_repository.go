package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	JobStatePending    = "pending"
	JobStateInProgress = "in_progress"
	JobStateSucceeded  = "succeeded"
	JobStateFailed     = "failed"
)

// JobStatus tracks one ingest task from enqueue to completion. Entries
// expire from the cache on their own once the job is long finished.
type JobStatus struct {
	TaskId     string     `json:"task_id"`
	DocumentId uuid.UUID  `json:"document_id"`
	State      string     `json:"state"`
	Attempts   int        `json:"attempts"`
	Error      string     `json:"error,omitempty"`
	Canceled   bool       `json:"canceled"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobStatusRepository keeps job records in an expiring cache. The mutex
// covers field mutation: the ingest worker updates jobs while the HTTP
// poller reads them, and the stored struct is never handed out directly.
type JobStatusRepository struct {
	mu    sync.Mutex
	cache *cache.Cache
}

func NewJobStatusRepository() *JobStatusRepository {
	// Jobs linger for a day so clients can poll after completion, purged
	// every hour.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &JobStatusRepository{
		cache: c,
	}
}

// lookup returns the shared stored struct. Callers must hold r.mu.
func (r *JobStatusRepository) lookup(taskId string) (*JobStatus, bool) {
	if x, found := r.cache.Get(taskId); found {
		return x.(*JobStatus), true
	}
	return nil, false
}

func (r *JobStatusRepository) Create(taskId string, documentId uuid.UUID) *JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	job := &JobStatus{
		TaskId:     taskId,
		DocumentId: documentId,
		State:      JobStatePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.cache.Set(taskId, job, cache.DefaultExpiration)

	snapshot := *job
	return &snapshot
}

// Get returns a snapshot of the job, safe to read without coordination.
func (r *JobStatusRepository) Get(taskId string) (*JobStatus, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, found := r.lookup(taskId)
	if !found {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

func (r *JobStatusRepository) SetState(taskId string, state string, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, found := r.lookup(taskId)
	if !found {
		return
	}
	job.State = state
	job.Error = errMsg
	job.UpdatedAt = time.Now()
	if state == JobStateSucceeded || state == JobStateFailed {
		finished := job.UpdatedAt
		job.FinishedAt = &finished
	}
	r.cache.Set(taskId, job, cache.DefaultExpiration)
}

func (r *JobStatusRepository) IncrementAttempts(taskId string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, found := r.lookup(taskId)
	if !found {
		return 0
	}
	job.Attempts++
	job.UpdatedAt = time.Now()
	r.cache.Set(taskId, job, cache.DefaultExpiration)
	return job.Attempts
}

// MarkCanceled flags the job so the consumer stops at its next phase
// boundary. A job that already finished keeps its terminal state.
func (r *JobStatusRepository) MarkCanceled(taskId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, found := r.lookup(taskId)
	if !found {
		return false
	}
	if job.State == JobStateSucceeded || job.State == JobStateFailed {
		return false
	}
	job.Canceled = true
	job.UpdatedAt = time.Now()
	r.cache.Set(taskId, job, cache.DefaultExpiration)
	return true
}

func (r *JobStatusRepository) IsCanceled(taskId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, found := r.lookup(taskId)
	return found && job.Canceled
}

func (r *JobStatusRepository) Delete(taskId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Delete(taskId)
}
