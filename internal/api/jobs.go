package api

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/kestrelvm/kestrelasm/internal/assembler"
	"github.com/kestrelvm/kestrelasm/internal/output"
)

// JobStatus is an assemble job's lifecycle state.
type JobStatus string

const (
	StatusQueued  JobStatus = "queued"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// Job is one submitted assembly request and its outcome.
type Job struct {
	ID     string
	Status JobStatus
	Error  string
	Words  []int
}

// JobManager runs submitted sources through the assembler in the background
// and keeps their results available for later retrieval, broadcasting status
// transitions as they happen.
type JobManager struct {
	mu          sync.RWMutex
	jobs        map[string]*Job
	broadcaster *Broadcaster
}

// NewJobManager creates a job manager backed by b.
func NewJobManager(b *Broadcaster) *JobManager {
	return &JobManager{jobs: make(map[string]*Job), broadcaster: b}
}

func newJobID() string {
	var buf [16]byte
	_, _ = rand.Read(buf[:])
	return hex.EncodeToString(buf[:])
}

// Submit queues src for assembly under opts and returns the new job's ID.
func (jm *JobManager) Submit(src, filename string, opts assembler.Options) string {
	id := newJobID()
	job := &Job{ID: id, Status: StatusQueued}

	jm.mu.Lock()
	jm.jobs[id] = job
	jm.mu.Unlock()
	jm.broadcaster.BroadcastStatus(id, string(StatusQueued))

	go jm.run(job, src, filename, opts)
	return id
}

func (jm *JobManager) run(job *Job, src, filename string, opts assembler.Options) {
	jm.setStatus(job, StatusRunning)

	asm := assembler.New(opts)
	words, err := asm.Assemble(src, filename)

	jm.mu.Lock()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusDone
		job.Words = words
	}
	jm.mu.Unlock()

	if err != nil {
		jm.broadcaster.BroadcastDiagnostic(job.ID, err.Error())
	}
	jm.broadcaster.BroadcastStatus(job.ID, string(job.Status))
}

func (jm *JobManager) setStatus(job *Job, status JobStatus) {
	jm.mu.Lock()
	job.Status = status
	jm.mu.Unlock()
	jm.broadcaster.BroadcastStatus(job.ID, string(status))
}

// Get returns a snapshot of job id's current state.
func (jm *JobManager) Get(id string) (Job, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	job, ok := jm.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Output renders a finished job's words in the requested format.
func (jm *JobManager) Output(id string, dcl bool) ([]byte, bool) {
	jm.mu.RLock()
	defer jm.mu.RUnlock()
	job, ok := jm.jobs[id]
	if !ok || job.Status != StatusDone {
		return nil, false
	}
	if dcl {
		return []byte(output.DCL(job.Words)), true
	}
	return output.Binary(job.Words), true
}
