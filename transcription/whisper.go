package transcription

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// waitDelay bounds how long a killed whisper process may keep its output
// pipes open.
const waitDelay = 2 * time.Second

type WhisperConfig struct {
	// Binary is the whisper executable, looked up on PATH when not absolute.
	Binary string
	// Model is the whisper model name, e.g. "base".
	Model string
	// TempDir receives one scratch output directory per call.
	TempDir string
}

// Whisper runs the openai-whisper command line tool over a media file. Each
// call starts its own process; the process is killed when ctx is done.
type Whisper struct {
	config            WhisperConfig
	logger            logrus.FieldLogger
	ExecuteScriptFunc func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewWhisper(cfg WhisperConfig, logger logrus.FieldLogger) *Whisper {
	return &Whisper{
		config:            cfg,
		logger:            logger,
		ExecuteScriptFunc: executeScript,
	}
}

func (w *Whisper) Recognize(ctx context.Context, path string) (string, error) {
	logger := w.logger.WithFields(logrus.Fields{
		"file":  path,
		"model": w.config.Model,
	})

	if err := validateMediaFile(path); err != nil {
		return "", err
	}

	outputDir, err := os.MkdirTemp(w.config.TempDir, "whisper-*")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(outputDir); err != nil {
			logger.WithError(err).Warn("Failed to remove whisper output dir")
		}
	}()

	logger.Info("Starting local transcription")

	args := []string{
		path,
		"--model", w.config.Model,
		"--task", "transcribe",
		"--output_format", "txt",
		"--output_dir", outputDir,
		"--verbose", "False",
	}
	if output, err := w.ExecuteScriptFunc(ctx, w.config.Binary, args...); err != nil {
		logger.WithError(err).WithField("output", string(output)).Error("Whisper failed")
		return "", err
	}

	text, err := readTranscriptionFile(transcriptPath(outputDir, path))
	if err != nil {
		return "", err
	}

	logger.WithField("length", len(text)).Info("Local transcription completed")
	return text, nil
}

// transcriptPath is where whisper writes the txt output for mediaPath.
func transcriptPath(outputDir, mediaPath string) string {
	base := filepath.Base(mediaPath)
	return filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}

func executeScript(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return stdout.Bytes(), fmt.Errorf("whisper interrupted: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("whisper failed: %w: %s", err, lastLine(msg))
		}
		return stdout.Bytes(), fmt.Errorf("whisper failed: %w", err)
	}
	return stdout.Bytes(), nil
}

func validateMediaFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("media file does not exist: %s", path)
		}
		return fmt.Errorf("failed to stat media file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("media path is a directory: %s", path)
	}
	return nil
}

// readTranscriptionFile reads whisper's txt output, which has one segment
// per line, and flattens it to a single line.
func readTranscriptionFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("error reading transcription file: %w", err)
	}

	var parts []string
	for _, line := range strings.Split(string(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
