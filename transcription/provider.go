package transcription

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoCaptions means the video has no caption tracks at all.
	ErrNoCaptions = stderrors.New("no captions are available for this video")
	// ErrLanguageUnavailable means the video has captions, but not in the
	// requested language. No other language is tried.
	ErrLanguageUnavailable = stderrors.New("no transcript in the requested language")
	// ErrEmptyTranscript is returned when a source produced no text.
	ErrEmptyTranscript = stderrors.New("transcript is empty")
)

// Segment is one caption fragment. Timing is kept but not used when the
// transcript is flattened.
type Segment struct {
	Text       string
	StartMs    int
	DurationMs int
}

// CaptionFetcher retrieves the caption fragments of a video in exactly one
// language, in the order the service returns them.
type CaptionFetcher interface {
	Fetch(ctx context.Context, videoID, lang string) ([]Segment, error)
}

// Recognizer runs speech recognition over a local media file.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Provider turns a video reference into a flat transcript. It holds no
// per-request state and never caches results.
type Provider struct {
	captions   CaptionFetcher
	recognizer Recognizer
	logger     logrus.FieldLogger
}

func NewProvider(captions CaptionFetcher, recognizer Recognizer, logger logrus.FieldLogger) *Provider {
	return &Provider{
		captions:   captions,
		recognizer: recognizer,
		logger:     logger,
	}
}

// FromVideo fetches the captions of videoID in lang and joins them with
// single spaces.
func (p *Provider) FromVideo(ctx context.Context, videoID, lang string) (string, error) {
	logger := p.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"language": lang,
	})

	segments, err := p.captions.Fetch(ctx, videoID, lang)
	if err != nil {
		logger.WithError(err).Warn("Caption retrieval failed")
		return "", err
	}

	text := JoinSegments(segments)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}

	logger.WithFields(logrus.Fields{
		"segments": len(segments),
		"length":   len(text),
	}).Debug("Captions retrieved")
	return text, nil
}

// FromFile transcribes the media file at path with the local recognizer.
func (p *Provider) FromFile(ctx context.Context, path string) (string, error) {
	logger := p.logger.WithField("file", path)

	text, err := p.recognizer.Recognize(ctx, path)
	if err != nil {
		logger.WithError(err).Warn("Local transcription failed")
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTranscript
	}

	logger.WithField("length", len(text)).Debug("Local transcription completed")
	return text, nil
}

// JoinSegments concatenates fragment texts with a single space, preserving
// order.
func JoinSegments(segments []Segment) string {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return strings.Join(texts, " ")
}
