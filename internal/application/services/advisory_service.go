package services

import (
	"context"
	"strings"

	"github.com/zatekoja/carefinder/backend/internal/domain/providers"
	"github.com/zatekoja/carefinder/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/carefinder/backend/pkg/errors"
)

// AdvisoryDisclaimer closes every advisory reply.
const AdvisoryDisclaimer = "정확한 진단은 반드시 의료진과 상담하세요."

// AdvisorySystemPrompt is the fixed instruction sent with every symptom message.
var AdvisorySystemPrompt = strings.Join([]string{
	"You are a triage assistant for a Korean hospital finder.",
	"Read the user's symptoms and recommend exactly one hospital department to visit.",
	"Answer in the user's language in two or three sentences.",
	"Do not diagnose and do not suggest medication.",
	"Always end the reply with this exact sentence: " + AdvisoryDisclaimer,
}, " ")

const maxAdvisoryMessageRunes = 2000

// AdvisoryService maps free-text symptoms to a department recommendation.
type AdvisoryService struct {
	provider providers.AdvisoryProvider
}

// NewAdvisoryService creates a new advisory service. A nil provider leaves the
// service wired but unavailable.
func NewAdvisoryService(provider providers.AdvisoryProvider) *AdvisoryService {
	return &AdvisoryService{provider: provider}
}

// Advise returns the completion reply for message
func (s *AdvisoryService) Advise(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperrors.NewValidationError("message is required")
	}
	if len([]rune(message)) > maxAdvisoryMessageRunes {
		return "", apperrors.NewValidationError("message is too long")
	}
	if s.provider == nil {
		return "", apperrors.NewExternalError("advisory service unavailable", nil)
	}

	ctx, span := observability.StartSpan(ctx, "advisory.advise")
	defer span.End()

	reply, err := s.provider.Complete(ctx, AdvisorySystemPrompt, message)
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("advisory completion failed")
		return "", apperrors.NewExternalError("advisory service unavailable", err)
	}
	return reply, nil
}
