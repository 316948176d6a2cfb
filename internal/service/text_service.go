package service

import (
	"context"

	"github.com/rs/zerolog"

	"maestroai/internal/domain"
	"maestroai/internal/prompt"
)

// TextAgent is the agent a TextService delegates to.
type TextAgent interface {
	Invoke(ctx context.Context, image []byte, params prompt.ExtractionContext) (string, error)
}

// TextService reads the text answering a query off a screenshot.
type TextService interface {
	ExtractText(ctx context.Context, screen domain.Screen, query string) (string, error)
}

type textService struct {
	agent     TextAgent
	maxPixels int
}

// NewTextService creates a new TextService implementation.
func NewTextService(agent TextAgent, maxPixels int) TextService {
	return &textService{agent: agent, maxPixels: maxPixels}
}

func (s *textService) ExtractText(ctx context.Context, screen domain.Screen, query string) (string, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "text_service").Logger()

	image, err := decodeScreen(screen, s.maxPixels)
	if err != nil {
		logger.Warn().Err(err).Int("screen_len", screen.EncodedLen()).Msg("textService.ExtractText: invalid screen")
		return "", err
	}

	logger.Info().
		Bool("byte_array", screen.IsByteArray()).
		Int("screen_len", screen.EncodedLen()).
		Int("image_bytes", len(image)).
		Int("query_len", len(query)).
		Msg("textService.ExtractText: starting")

	text, err := s.agent.Invoke(ctx, image, prompt.ExtractionContext{Query: query})
	if err != nil {
		return "", err
	}

	logger.Info().Int("text_len", len(text)).Msg("textService.ExtractText: complete")
	return text, nil
}
