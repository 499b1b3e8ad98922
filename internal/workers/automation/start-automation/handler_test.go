package startautomation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-automation/internal/common/config"
	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type fakeStarter struct {
	applicationID string
	serviceType   string
	actorID       string
	job           *models.Job
	err           error
}

func (f *fakeStarter) StartAutomation(_ context.Context, applicationID, serviceType, actorID string) (*models.Job, error) {
	f.applicationID = applicationID
	f.serviceType = serviceType
	f.actorID = actorID
	return f.job, f.err
}

func newTestHandler(t *testing.T, starter Starter) *Handler {
	return NewHandler(LoadConfig(config.WorkerConfig{}), starter, logger.NewTestLogger(t))
}

// ==========================
// Execute
// ==========================

func TestHandler_Execute_QueuesJob(t *testing.T) {
	starter := &fakeStarter{job: &models.Job{
		ID:           "job-1",
		OrderID:      "ABC123",
		Status:       models.JobPending,
		CurrentStage: models.StageInitiated,
		Attempts:     2,
	}}
	h := newTestHandler(t, starter)

	out, err := h.Execute(context.Background(), &Input{ApplicationID: "11", ActorID: "ops-7"})
	require.NoError(t, err)

	assert.Equal(t, "11", starter.applicationID)
	assert.Empty(t, starter.serviceType)
	assert.Equal(t, "ops-7", starter.actorID)

	assert.Equal(t, "job-1", out.AutomationJobID)
	assert.Equal(t, "PENDING", out.AutomationStatus)
	assert.Equal(t, "INITIATED", out.AutomationStage)
	assert.Equal(t, 2, out.AutomationAttempts)
	assert.Equal(t, "ABC123", out.OrderID)
}

func TestHandler_Execute_PropagatesServiceError(t *testing.T) {
	h := newTestHandler(t, &fakeStarter{err: errors.NewNotFoundError("application", "404")})

	_, err := h.Execute(context.Background(), &Input{ApplicationID: "404"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

// ==========================
// Input parsing
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables map[string]interface{}
		wantID    string
		wantType  string
		wantCode  errors.ErrorCode
	}{
		{
			name:      "string id with overrides",
			variables: map[string]interface{}{"applicationId": " SUB-9 ", "serviceType": "GST_REGISTRATION", "actorId": "u1"},
			wantID:    "SUB-9",
			wantType:  "GST_REGISTRATION",
		},
		{
			name:      "numeric id",
			variables: map[string]interface{}{"applicationId": 42.0},
			wantID:    "42",
		},
		{
			name:      "missing id",
			variables: map[string]interface{}{"serviceType": "GST_REGISTRATION"},
			wantCode:  errors.ErrCodeInvalidInput,
		},
		{
			name:      "fractional id",
			variables: map[string]interface{}{"applicationId": 4.5},
			wantCode:  errors.ErrCodeInvalidInput,
		},
		{
			name:      "blank id",
			variables: map[string]interface{}{"applicationId": "   "},
			wantCode:  errors.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := parseInput(tt.variables)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, input.ApplicationID)
			assert.Equal(t, tt.wantType, input.ServiceType)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	assert.Equal(t, 10*time.Second, LoadConfig(config.WorkerConfig{}).Timeout)
	assert.Equal(t, 2500*time.Millisecond, LoadConfig(config.WorkerConfig{Timeout: 2500}).Timeout)
}
