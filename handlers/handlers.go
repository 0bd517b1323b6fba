package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/middleware"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/utils"
	"github.com/nijaru/yt-summary/validation"
	"github.com/nijaru/yt-summary/web"
)

const themeCookie = "theme"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service is the orchestration the handlers delegate to.
type Service interface {
	SummarizeYouTube(ctx context.Context, rawURL, lang string) (*models.SummaryResponse, error)
	SummarizeFile(ctx context.Context, path string) (*models.SummaryResponse, error)
	Request(ctx context.Context, id string) (*models.Request, error)
	Recent(ctx context.Context, limit int) ([]*models.Request, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	MaxUploadSize int64
	TempDir       string
}

type Handler struct {
	service Service
	page    *web.Page
	health  Pinger
	config  Config
}

func New(service Service, page *web.Page, health Pinger, config Config) *Handler {
	return &Handler{
		service: service,
		page:    page,
		health:  health,
		config:  config,
	}
}

// Index renders the page. A ?theme= query switches the theme and is
// remembered in a cookie.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	theme := r.URL.Query().Get("theme")
	if theme != "" {
		theme = web.NormalizeTheme(theme)
		http.SetCookie(w, &http.Cookie{
			Name:     themeCookie,
			Value:    theme,
			Path:     "/",
			MaxAge:   int((365 * 24 * time.Hour).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	} else if c, err := r.Cookie(themeCookie); err == nil {
		theme = c.Value
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.page.Render(w, theme); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to render page")
	}
}

func (h *Handler) SummarizeYouTube(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	rawURL := strings.TrimSpace(r.FormValue("url"))
	lang := r.FormValue("lang")
	if lang == "" {
		lang = validation.Languages[0]
	}

	resp, err := h.service.SummarizeYouTube(r.Context(), rawURL, lang)
	if err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}

	logger.WithField("video_id", resp.VideoID).Info("Summary generated")
	utils.RespondWithJSON(w, logger, http.StatusOK, resp)
}

// SummarizeUpload stores the uploaded video in a temporary file for the
// duration of the request and removes it afterwards.
func (h *Handler) SummarizeUpload(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.SummarizeUpload"
	logger := middleware.GetLogger(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondWithError(w, logger, uploadError(op, err, h.config.MaxUploadSize))
		return
	}
	defer file.Close()

	if err := validation.ValidateUpload(header.Filename, header.Size, h.config.MaxUploadSize); err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}

	path, err := h.saveUpload(file, filepath.Ext(header.Filename))
	if err != nil {
		utils.RespondWithError(w, logger, errors.Internal(op, err, "Failed to store uploaded file"))
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.WithError(err).WithField("path", path).Warn("Failed to remove uploaded file")
		}
	}()

	logger.WithFields(logrus.Fields{
		"size": header.Size,
		"ext":  filepath.Ext(header.Filename),
	}).Info("Upload received")

	resp, err := h.service.SummarizeFile(r.Context(), path)
	if err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}
	utils.RespondWithJSON(w, logger, http.StatusOK, resp)
}

// Rating acknowledges a 1-5 star rating. Ratings are not stored.
func (h *Handler) Rating(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	rating, err := strconv.Atoi(r.FormValue("rating"))
	if err != nil {
		rating = 0
	}
	if err := validation.ValidateRating(rating); err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}

	utils.RespondWithJSON(w, logger, http.StatusOK, models.RatingResponse{
		Message: RatingMessage(rating),
	})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	req, err := h.service.Request(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}
	utils.RespondWithJSON(w, logger, http.StatusOK, req)
}

// ListRequests returns the newest journal entries. ?limit= defaults to 20
// and may not exceed 100.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ListRequests"
	logger := middleware.GetLogger(r.Context())

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			utils.RespondWithError(w, logger, errors.InvalidInput(op, err, fmt.Sprintf("limit must be between 1 and %d", maxListLimit)))
			return
		}
		limit = n
	}

	reqs, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, logger, err)
		return
	}
	utils.RespondWithJSON(w, logger, http.StatusOK, reqs)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())

	if h.health != nil {
		if err := h.health.Ping(r.Context()); err != nil {
			utils.RespondWithError(w, logger, errors.New(http.StatusServiceUnavailable, "handlers.Health", err, "Database unavailable"))
			return
		}
	}
	utils.RespondWithJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
}

// RatingMessage is the confirmation shown after a rating is submitted.
func RatingMessage(rating int) string {
	plural := ""
	if rating > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Thank you for your rating of %d star%s!", rating, plural)
}

func (h *Handler) saveUpload(src io.Reader, ext string) (string, error) {
	dst, err := os.CreateTemp(h.config.TempDir, "upload-*"+strings.ToLower(ext))
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func uploadError(op string, err error, maxSize int64) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.InvalidInput(op, err, fmt.Sprintf("Uploaded file exceeds %d bytes", maxSize))
	}
	return errors.InvalidInput(op, err, "A video file is required")
}
