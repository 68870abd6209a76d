package entity

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// ExtractionJob tracks one queued window extraction for the lifetime of a
// delivery. It is never stored; its state travels on the status queue.
type ExtractionJob struct {
	ID           uuid.UUID
	UserID       string
	VideoKey     string
	OutputName   string
	Window       FrameWindow
	Rotation     Rotation
	ArchiveKey   string
	Status       JobStatus
	FrameCount   int
	Attempt      int
	MaxAttempts  int
	ErrorMessage string
	StartedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewExtractionJob(msg ExtractionJobMessage, attempt, maxAttempts int) (*ExtractionJob, error) {
	rotation, err := ParseRotation(msg.Rotation)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &ExtractionJob{
		ID:          msg.JobID,
		UserID:      msg.UserID,
		VideoKey:    msg.VideoKey,
		OutputName:  msg.OutputName,
		Window:      FrameWindow{Start: msg.StartFrame, End: msg.EndFrame},
		Rotation:    rotation,
		Status:      JobStatusPending,
		Attempt:     attempt,
		MaxAttempts: maxAttempts,
		StartedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (j *ExtractionJob) MarkProcessing() {
	j.Status = JobStatusProcessing
	j.UpdatedAt = time.Now().UTC()
}

func (j *ExtractionJob) MarkCompleted(archiveKey string, frameCount int) {
	now := time.Now().UTC()
	j.Status = JobStatusCompleted
	j.ArchiveKey = archiveKey
	j.FrameCount = frameCount
	j.UpdatedAt = now
	j.CompletedAt = &now
}

func (j *ExtractionJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now().UTC()
}

func (j *ExtractionJob) CanRetry() bool {
	return j.Attempt < j.MaxAttempts
}

func (j *ExtractionJob) StatusMessage() ExtractionStatusMessage {
	return ExtractionStatusMessage{
		JobID:        j.ID,
		UserID:       j.UserID,
		Status:       j.Status,
		VideoKey:     j.VideoKey,
		ArchiveKey:   j.ArchiveKey,
		FrameCount:   j.FrameCount,
		ErrorMessage: j.ErrorMessage,
		Attempt:      j.Attempt,
		MaxAttempts:  j.MaxAttempts,
	}
}
