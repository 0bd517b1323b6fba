package models

// SummaryResponse is returned by both summarize endpoints.
type SummaryResponse struct {
	RequestID    string `json:"request_id"`
	VideoID      string `json:"video_id,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Summary      string `json:"summary"`
}

type RatingResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
