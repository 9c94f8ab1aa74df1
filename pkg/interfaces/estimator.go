package interfaces

import (
	"context"

	"github.com/RuvinSL/token-estimator/pkg/models"
)

// EstimatorClient defines the contract for the external analysis service
// Dependency Inversion Principle: the controller depends on this, not on net/http
type EstimatorClient interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
	CheckHealth(ctx context.Context) error
}

// Logger defines the contract for logging operations
// Interface Segregation Principle: Minimal interface for logging
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// MetricsCollector defines the contract for metrics collection
// Single Responsibility Principle: Only responsible for metrics
type MetricsCollector interface {
	RecordRequest(method, path string, statusCode int, duration float64)
	RecordAnalysis(mode string, outcome string, duration float64)
	RecordRejectedAnalysis(mode string)
	IncAnalysesInFlight()
	DecAnalysesInFlight()
	SetSessions(count int)
}

// HealthChecker defines the contract for health check operations
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}
