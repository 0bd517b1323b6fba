package models

import (
	"time"
)

type Source string

const (
	SourceYouTube Source = "youtube"
	SourceUpload  Source = "upload"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Request is the journal entry for one summarize call. It holds metadata
// only: transcripts and summaries are never stored.
type Request struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	VideoID   string    `json:"video_id,omitempty"`
	Language  string    `json:"language,omitempty"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Request) IsProcessing() bool { return r.Status == StatusProcessing }
func (r *Request) IsCompleted() bool  { return r.Status == StatusCompleted }
func (r *Request) IsFailed() bool     { return r.Status == StatusFailed }

// Duration is the time spent between creation and the last update.
func (r *Request) Duration() time.Duration {
	return r.UpdatedAt.Sub(r.CreatedAt)
}
