package summary

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Prefix is the fixed instruction placed in front of every transcript.
const Prefix = `
You are a multi-language video summarizer. You will summarize the entire video based on the transcript 
and provide an important summary in bullet points within 350 words. Here's the transcript: 
`

// Generator submits one prompt to a text model and returns its reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Summarizer struct {
	generator Generator
	prefix    string
	logger    logrus.FieldLogger
}

func New(generator Generator, logger logrus.FieldLogger) *Summarizer {
	return NewWithPrefix(generator, Prefix, logger)
}

func NewWithPrefix(generator Generator, prefix string, logger logrus.FieldLogger) *Summarizer {
	return &Summarizer{
		generator: generator,
		prefix:    prefix,
		logger:    logger,
	}
}

// Summarize sends prefix+transcript as a single prompt and returns the model
// output unchanged. Transcripts are not chunked or truncated.
func (s *Summarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := s.prefix + transcript

	s.logger.WithField("prompt_length", len(prompt)).Debug("Requesting summary")

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.WithError(err).Warn("Summary generation failed")
		return "", err
	}
	return text, nil
}
