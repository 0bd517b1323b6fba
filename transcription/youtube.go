package transcription

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/kkdai/youtube/v2"
)

// YouTubeCaptions fetches caption fragments through the YouTube innertube
// API.
type YouTubeCaptions struct {
	client videoClient
}

// videoClient is the part of *youtube.Client used for captions.
type videoClient interface {
	GetVideoContext(ctx context.Context, id string) (*youtube.Video, error)
	GetTranscriptCtx(ctx context.Context, video *youtube.Video, lang string) (youtube.VideoTranscript, error)
}

func NewYouTubeCaptions(httpClient *http.Client) *YouTubeCaptions {
	return &YouTubeCaptions{
		client: &youtube.Client{HTTPClient: httpClient},
	}
}

func (y *YouTubeCaptions) Fetch(ctx context.Context, videoID, lang string) ([]Segment, error) {
	video, err := y.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load video %s: %w", videoID, err)
	}

	if len(video.CaptionTracks) == 0 {
		return nil, ErrNoCaptions
	}
	if !hasTrack(video.CaptionTracks, lang) {
		return nil, fmt.Errorf("%w: %s", ErrLanguageUnavailable, lang)
	}

	transcript, err := y.client.GetTranscriptCtx(ctx, video, lang)
	if err != nil {
		if stderrors.Is(err, youtube.ErrTranscriptDisabled) {
			return nil, ErrNoCaptions
		}
		return nil, fmt.Errorf("fetch transcript %s/%s: %w", videoID, lang, err)
	}

	segments := make([]Segment, 0, len(transcript))
	for _, s := range transcript {
		segments = append(segments, Segment{
			Text:       s.Text,
			StartMs:    s.StartMs,
			DurationMs: s.Duration,
		})
	}
	return segments, nil
}

func hasTrack(tracks []youtube.CaptionTrack, lang string) bool {
	for _, t := range tracks {
		if t.LanguageCode == lang {
			return true
		}
	}
	return false
}
