package video

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/db"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/validation"
)

// Transcriber produces a flat transcript either from a video's captions or
// from a local media file.
type Transcriber interface {
	FromVideo(ctx context.Context, videoID, lang string) (string, error)
	FromFile(ctx context.Context, path string) (string, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Journal records request metadata. Implementations must never receive the
// transcript or the summary.
type Journal interface {
	Start(ctx context.Context, req *models.Request) error
	Finish(ctx context.Context, req *models.Request, cause error) error
	Get(ctx context.Context, id string) (*models.Request, error)
	Recent(ctx context.Context, limit int) ([]*models.Request, error)
}

type Config struct {
	TranscriptTimeout time.Duration
	TranscribeTimeout time.Duration
	SummarizeTimeout  time.Duration
}

type Service struct {
	transcriber Transcriber
	summarizer  Summarizer
	journal     Journal
	config      Config
	logger      logrus.FieldLogger

	NewID func() string
}

func NewService(transcriber Transcriber, summarizer Summarizer, journal Journal, config Config, logger logrus.FieldLogger) *Service {
	return &Service{
		transcriber: transcriber,
		summarizer:  summarizer,
		journal:     journal,
		config:      config,
		logger:      logger,
		NewID:       uuid.NewString,
	}
}

// SummarizeYouTube extracts the video id from rawURL, fetches its captions in
// lang and summarizes them. On failure no partial result is returned.
func (s *Service) SummarizeYouTube(ctx context.Context, rawURL, lang string) (*models.SummaryResponse, error) {
	const op = "video.SummarizeYouTube"

	if err := validation.ValidateLanguage(lang); err != nil {
		return nil, err
	}

	videoID, err := validation.ExtractVideoID(rawURL)
	if err != nil {
		return nil, errors.InvalidInput(op, err, "Invalid YouTube URL. Please try again.")
	}

	req := &models.Request{
		ID:       s.NewID(),
		Source:   models.SourceYouTube,
		VideoID:  videoID,
		Language: lang,
	}
	logger := s.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"video_id":   videoID,
		"language":   lang,
	})
	s.start(ctx, req, logger)

	text, err := s.run(ctx, s.config.TranscriptTimeout, func(ctx context.Context) (string, error) {
		return s.transcriber.FromVideo(ctx, videoID, lang)
	})
	if err != nil {
		return nil, s.fail(ctx, req, logger, errors.Upstream(op, err))
	}

	summary, err := s.summarize(ctx, text)
	if err != nil {
		return nil, s.fail(ctx, req, logger, errors.Upstream(op, err))
	}

	s.finish(ctx, req, logger)
	return &models.SummaryResponse{
		RequestID:    req.ID,
		VideoID:      videoID,
		ThumbnailURL: validation.ThumbnailURL(videoID),
		Summary:      summary,
	}, nil
}

// SummarizeFile transcribes the media file at path locally and summarizes
// the result. The caller owns the file.
func (s *Service) SummarizeFile(ctx context.Context, path string) (*models.SummaryResponse, error) {
	const op = "video.SummarizeFile"

	req := &models.Request{
		ID:     s.NewID(),
		Source: models.SourceUpload,
	}
	logger := s.logger.WithField("request_id", req.ID)
	s.start(ctx, req, logger)

	text, err := s.run(ctx, s.config.TranscribeTimeout, func(ctx context.Context) (string, error) {
		return s.transcriber.FromFile(ctx, path)
	})
	if err != nil {
		return nil, s.fail(ctx, req, logger, errors.Upstream(op, err))
	}

	summary, err := s.summarize(ctx, text)
	if err != nil {
		return nil, s.fail(ctx, req, logger, errors.Upstream(op, err))
	}

	s.finish(ctx, req, logger)
	return &models.SummaryResponse{
		RequestID: req.ID,
		Summary:   summary,
	}, nil
}

// Request returns the journal entry for id.
func (s *Service) Request(ctx context.Context, id string) (*models.Request, error) {
	const op = "video.Request"

	req, err := s.journal.Get(ctx, id)
	if stderrors.Is(err, db.ErrNotFound) {
		return nil, errors.NotFound(op, err, "Request not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to load request")
	}
	return req, nil
}

// Recent lists up to limit journal entries, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]*models.Request, error) {
	const op = "video.Recent"

	reqs, err := s.journal.Recent(ctx, limit)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to load requests")
	}
	if reqs == nil {
		reqs = []*models.Request{}
	}
	return reqs, nil
}

func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	return s.run(ctx, s.config.SummarizeTimeout, func(ctx context.Context) (string, error) {
		return s.summarizer.Summarize(ctx, text)
	})
}

func (s *Service) run(ctx context.Context, timeout time.Duration, fn func(context.Context) (string, error)) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

// Journal writes are best effort: a storage failure is logged but never
// changes the result returned to the user.
func (s *Service) start(ctx context.Context, req *models.Request, logger logrus.FieldLogger) {
	logger.Info("Summarize request started")
	if err := s.journal.Start(context.WithoutCancel(ctx), req); err != nil {
		logger.WithError(err).Error("Failed to record request")
	}
}

func (s *Service) finish(ctx context.Context, req *models.Request, logger logrus.FieldLogger) {
	if err := s.journal.Finish(context.WithoutCancel(ctx), req, nil); err != nil {
		logger.WithError(err).Error("Failed to record request completion")
	}
	logger.WithField("duration", req.Duration()).Info("Summarize request completed")
}

func (s *Service) fail(ctx context.Context, req *models.Request, logger logrus.FieldLogger, appErr *errors.AppError) error {
	if err := s.journal.Finish(context.WithoutCancel(ctx), req, appErr.Err); err != nil {
		logger.WithError(err).Error("Failed to record request failure")
	}
	logger.WithError(appErr.Err).Error("Summarize request failed")
	return appErr
}
