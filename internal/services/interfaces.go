package services

import (
	"context"

	"github.com/maxappraiser/appraiser-api/internal/models"
)

// EvaluationServiceInterface defines the interface for idea evaluation
type EvaluationServiceInterface interface {
	Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResponse, error)
	ScorerName() string
}

// Ensure services implement their interfaces
var _ EvaluationServiceInterface = (*EvaluationService)(nil)
