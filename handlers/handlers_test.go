package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nijaru/yt-summary/config"
	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/models"
	"github.com/nijaru/yt-summary/web"
)

type mockService struct {
	youtubeResp *models.SummaryResponse
	fileResp    *models.SummaryResponse
	err         error

	gotURL, gotLang string
	gotPath         string
	fileExisted     bool
	gotLimit        int
}

func (m *mockService) SummarizeYouTube(ctx context.Context, rawURL, lang string) (*models.SummaryResponse, error) {
	m.gotURL, m.gotLang = rawURL, lang
	return m.youtubeResp, m.err
}

func (m *mockService) SummarizeFile(ctx context.Context, path string) (*models.SummaryResponse, error) {
	m.gotPath = path
	_, err := os.Stat(path)
	m.fileExisted = err == nil
	return m.fileResp, m.err
}

func (m *mockService) Request(ctx context.Context, id string) (*models.Request, error) {
	if id == "req-1" {
		return &models.Request{ID: id, Source: models.SourceYouTube, Status: models.StatusCompleted}, nil
	}
	return nil, errors.NotFound("mock.Request", nil, "Request not found")
}

func (m *mockService) Recent(ctx context.Context, limit int) ([]*models.Request, error) {
	m.gotLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return []*models.Request{{ID: "req-2", Source: models.SourceUpload, Status: models.StatusFailed}}, nil
}

type mockPinger struct{ err error }

func (p mockPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, svc Service, pinger Pinger) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()

	cfg := &config.Config{
		ServerPort: "0",
		TempDir:    t.TempDir(),
		RateLimit:  config.RateLimitConfig{Requests: 100, Interval: time.Second},
		Upload:     config.UploadConfig{MaxSize: 1 << 20},
	}

	page, err := web.NewPage(cfg.Upload.MaxSize)
	require.NoError(t, err)

	handler := New(svc, page, pinger, Config{MaxUploadSize: cfg.Upload.MaxSize, TempDir: cfg.TempDir})
	return NewServer(cfg, handler, logger).Routes()
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func postForm(h http.Handler, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSummarizeYouTubeHandler(t *testing.T) {
	svc := &mockService{youtubeResp: &models.SummaryResponse{
		RequestID:    "req-1",
		VideoID:      "abc12345678",
		ThumbnailURL: "https://img.youtube.com/vi/abc12345678/maxresdefault.jpg",
		Summary:      "- point one",
	}}
	h := newTestServer(t, svc, nil)

	rr := postForm(h, "/api/summarize/youtube", url.Values{
		"url":  {"https://www.youtube.com/watch?v=abc12345678"},
		"lang": {"en"},
	})

	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "- point one", body["summary"])
	assert.Equal(t, "abc12345678", body["video_id"])
	assert.Equal(t, "https://www.youtube.com/watch?v=abc12345678", svc.gotURL)
	assert.Equal(t, "en", svc.gotLang)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestSummarizeYouTubeDefaultsToEnglish(t *testing.T) {
	svc := &mockService{youtubeResp: &models.SummaryResponse{Summary: "ok"}}
	h := newTestServer(t, svc, nil)

	rr := postForm(h, "/api/summarize/youtube", url.Values{"url": {"https://youtu.be/abc12345678"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "en", svc.gotLang)
}

func TestSummarizeYouTubeErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "invalid url",
			err:      errors.InvalidInput("op", nil, "Invalid YouTube URL. Please try again."),
			wantCode: http.StatusBadRequest,
			wantMsg:  "Invalid YouTube URL. Please try again.",
		},
		{
			name:     "upstream failure",
			err:      errors.Upstream("op", stderrors.New("transcripts are disabled for this video")),
			wantCode: http.StatusBadGateway,
			wantMsg:  "Error: transcripts are disabled for this video",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &mockService{err: tt.err}, nil)
			rr := postForm(h, "/api/summarize/youtube", url.Values{"url": {"x"}, "lang": {"en"}})

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rr)["error"])
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, &mockService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/summarize/youtube", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/summarize/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSummarizeUploadHandler(t *testing.T) {
	svc := &mockService{fileResp: &models.SummaryResponse{RequestID: "req-2", Summary: "- uploaded"}}
	h := newTestServer(t, svc, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartUpload(t, "Clip.MP4", []byte("fake video bytes")))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "- uploaded", decode(t, rr)["summary"])
	assert.True(t, svc.fileExisted)
	assert.True(t, strings.HasSuffix(svc.gotPath, ".mp4"))

	_, err := os.Stat(svc.gotPath)
	assert.True(t, os.IsNotExist(err), "temporary upload must be removed")
}

func TestSummarizeUploadRejectsExtension(t *testing.T) {
	svc := &mockService{}
	h := newTestServer(t, svc, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, multipartUpload(t, "notes.txt", []byte("hello")))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Only mp4, mkv and avi files are supported", decode(t, rr)["error"])
	assert.Empty(t, svc.gotPath)
}

func TestSummarizeUploadMissingFile(t *testing.T) {
	h := newTestServer(t, &mockService{}, nil)

	rr := postForm(h, "/api/summarize/upload", url.Values{})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "A video file is required", decode(t, rr)["error"])
}

func TestRatingHandler(t *testing.T) {
	h := newTestServer(t, &mockService{}, nil)

	tests := []struct {
		rating   string
		wantCode int
		wantKey  string
		wantMsg  string
	}{
		{"1", http.StatusOK, "message", "Thank you for your rating of 1 star!"},
		{"5", http.StatusOK, "message", "Thank you for your rating of 5 stars!"},
		{"0", http.StatusBadRequest, "error", "Rating must be between 1 and 5"},
		{"six", http.StatusBadRequest, "error", "Rating must be between 1 and 5"},
	}

	for _, tt := range tests {
		t.Run(tt.rating, func(t *testing.T) {
			rr := postForm(h, "/api/rating", url.Values{"rating": {tt.rating}})
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rr)[tt.wantKey])
		})
	}
}

func TestGetRequestHandler(t *testing.T) {
	h := newTestServer(t, &mockService{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/requests/req-1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "completed", decode(t, rr)["status"])

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/requests/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListRequestsHandler(t *testing.T) {
	svc := &mockService{}
	h := newTestServer(t, svc, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/requests", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 20, svc.gotLimit)

	var reqs []models.Request
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reqs))
	require.Len(t, reqs, 1)
	assert.Equal(t, "req-2", reqs[0].ID)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/requests?limit=5", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, svc.gotLimit)

	for _, bad := range []string{"0", "101", "many"} {
		rr = httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/requests?limit="+bad, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
		assert.Equal(t, "limit must be between 1 and 100", decode(t, rr)["error"])
	}
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestServer(t, &mockService{}, mockPinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode(t, rr)["status"])

	rr = httptest.NewRecorder()
	newTestServer(t, &mockService{}, mockPinger{err: stderrors.New("closed")}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestIndexTheme(t *testing.T) {
	h := newTestServer(t, &mockService{}, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/?theme=dark", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `data-theme="dark"`)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "dark", cookies[0].Value)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Contains(t, rr.Body.String(), `data-theme="dark"`)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rr.Body.String(), `data-theme="light"`)
}

func TestRateLimitedSummarize(t *testing.T) {
	logger, _ := test.NewNullLogger()
	cfg := &config.Config{
		ServerPort: "0",
		TempDir:    t.TempDir(),
		RateLimit:  config.RateLimitConfig{Requests: 1, Interval: time.Hour},
		Upload:     config.UploadConfig{MaxSize: 1 << 20},
	}
	page, err := web.NewPage(cfg.Upload.MaxSize)
	require.NoError(t, err)
	svc := &mockService{youtubeResp: &models.SummaryResponse{Summary: "ok"}}
	h := NewServer(cfg, New(svc, page, nil, Config{MaxUploadSize: 1 << 20, TempDir: cfg.TempDir}), logger).Routes()

	form := url.Values{"url": {"https://youtu.be/abc12345678"}, "lang": {"en"}}
	assert.Equal(t, http.StatusOK, postForm(h, "/api/summarize/youtube", form).Code)
	assert.Equal(t, http.StatusTooManyRequests, postForm(h, "/api/summarize/youtube", form).Code)

	rr := postForm(h, "/api/rating", url.Values{"rating": {"3"}})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRatingMessage(t *testing.T) {
	assert.Equal(t, "Thank you for your rating of 1 star!", RatingMessage(1))
	assert.Equal(t, "Thank you for your rating of 3 stars!", RatingMessage(3))
}
