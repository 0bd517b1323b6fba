package validation

import (
	stderrors "errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nijaru/yt-summary/errors"
)

// ErrInvalidURL is returned when no video identifier can be found in a URL.
var ErrInvalidURL = stderrors.New("invalid YouTube URL")

var videoIDPattern = regexp.MustCompile(
	`(?:youtu\.be/|youtube\.com/(?:embed/|v/|watch\?v=|shorts/))([a-zA-Z0-9_-]{11})`,
)

// Languages are the caption languages offered to the user, in display order.
var Languages = []string{"en", "es", "fr", "de", "hi", "ja", "ko"}

// MediaExtensions are the accepted upload formats.
var MediaExtensions = []string{".mp4", ".mkv", ".avi"}

const thumbnailURLTemplate = "https://img.youtube.com/vi/%s/maxresdefault.jpg"

// ExtractVideoID returns the first 11-character video identifier found in
// rawURL. The rest of the URL is not checked.
func ExtractVideoID(rawURL string) (string, error) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", ErrInvalidURL
	}
	return m[1], nil
}

func ThumbnailURL(videoID string) string {
	return fmt.Sprintf(thumbnailURLTemplate, videoID)
}

func ValidateLanguage(code string) error {
	const op = "validation.ValidateLanguage"

	for _, lang := range Languages {
		if code == lang {
			return nil
		}
	}
	return errors.InvalidInput(op, nil, fmt.Sprintf("Unsupported language %q", code))
}

// ValidateUpload checks an uploaded file's name and size before it is
// written to disk.
func ValidateUpload(filename string, size, maxSize int64) error {
	const op = "validation.ValidateUpload"

	if strings.TrimSpace(filename) == "" {
		return errors.InvalidInput(op, nil, "A video file is required")
	}
	if size <= 0 {
		return errors.InvalidInput(op, nil, "Uploaded file is empty")
	}
	if maxSize > 0 && size > maxSize {
		return errors.InvalidInput(op, nil, fmt.Sprintf("Uploaded file exceeds %d bytes", maxSize))
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range MediaExtensions {
		if ext == allowed {
			return nil
		}
	}
	return errors.InvalidInput(op, nil, "Only mp4, mkv and avi files are supported")
}

func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return errors.InvalidInput("validation.ValidateRating", nil, "Rating must be between 1 and 5")
	}
	return nil
}
