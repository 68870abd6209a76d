package entity

import (
	"errors"

	"github.com/google/uuid"
)

// ExtractionJobMessage is the inbound message from the extraction queue.
type ExtractionJobMessage struct {
	JobID      uuid.UUID `json:"job_id"`
	UserID     string    `json:"user_id"`
	VideoKey   string    `json:"video_key"`
	OutputName string    `json:"output_name"`
	StartFrame int       `json:"start_frame"`
	EndFrame   int       `json:"end_frame"`
	Rotation   string    `json:"rotation,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
}

func (m ExtractionJobMessage) Validate() error {
	switch {
	case m.JobID == uuid.Nil:
		return errors.New("job_id is required")
	case m.VideoKey == "":
		return errors.New("video_key is required")
	case m.OutputName == "":
		return errors.New("output_name is required")
	case m.StartFrame < 0:
		return errors.New("start_frame must not be negative")
	}
	_, err := ParseRotation(m.Rotation)
	return err
}

// ExtractionStatusMessage is the outbound message published to the status queue.
type ExtractionStatusMessage struct {
	JobID        uuid.UUID `json:"job_id"`
	UserID       string    `json:"user_id"`
	Status       JobStatus `json:"status"`
	VideoKey     string    `json:"video_key"`
	ArchiveKey   string    `json:"archive_key,omitempty"`
	FrameCount   int       `json:"frame_count,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Attempt      int       `json:"attempt"`
	MaxAttempts  int       `json:"max_attempts"`
}
