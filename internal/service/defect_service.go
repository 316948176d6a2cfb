package service

import (
	"context"

	"github.com/rs/zerolog"

	"maestroai/internal/domain"
	"maestroai/internal/prompt"
)

// DefectAgent is the agent a DefectService delegates to.
type DefectAgent interface {
	Invoke(ctx context.Context, image []byte, params prompt.DefectContext) ([]domain.Defect, error)
}

// DefectService finds UI defects on a screenshot and checks an optional assertion.
type DefectService interface {
	FindDefects(ctx context.Context, screen domain.Screen, assertion *string) ([]domain.Defect, error)
}

type defectService struct {
	agent     DefectAgent
	maxPixels int
}

// NewDefectService creates a new DefectService implementation.
func NewDefectService(agent DefectAgent, maxPixels int) DefectService {
	return &defectService{agent: agent, maxPixels: maxPixels}
}

func (s *defectService) FindDefects(ctx context.Context, screen domain.Screen, assertion *string) ([]domain.Defect, error) {
	logger := zerolog.Ctx(ctx).With().Str("component", "defect_service").Logger()

	image, err := decodeScreen(screen, s.maxPixels)
	if err != nil {
		logger.Warn().Err(err).Int("screen_len", screen.EncodedLen()).Msg("defectService.FindDefects: invalid screen")
		return nil, err
	}

	logger.Info().
		Bool("byte_array", screen.IsByteArray()).
		Int("screen_len", screen.EncodedLen()).
		Int("image_bytes", len(image)).
		Bool("has_assertion", assertion != nil).
		Msg("defectService.FindDefects: starting")

	defects, err := s.agent.Invoke(ctx, image, prompt.DefectContext{Assertion: assertion})
	if err != nil {
		return nil, err
	}

	logger.Info().Int("defects", len(defects)).Msg("defectService.FindDefects: complete")
	return defects, nil
}
