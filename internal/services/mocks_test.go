package services_test

import (
	"context"

	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/maxappraiser/appraiser-api/internal/scoring"
	"github.com/stretchr/testify/mock"
)

// MockScorer is a mock implementation of scoring.Scorer
type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Name() string {
	return "mock"
}

func (m *MockScorer) ProduceScores(ctx context.Context, req *models.EvaluationRequest) (scoring.Scores, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(scoring.Scores), args.Error(1)
}
