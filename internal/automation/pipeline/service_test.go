package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/models"
)

func newService(t *testing.T, f *fixture) (*Service, *Pool) {
	t.Helper()
	pool := NewPool(context.Background(), 2, 4, logger.NewNoOpLogger())
	t.Cleanup(func() { _ = pool.Stop(context.Background()) })
	return NewService(f.orch, pool, logger.NewTestLogger(t)), pool
}

func waitForTerminal(t *testing.T, svc *Service, applicationID string) *models.Job {
	t.Helper()
	var latest *models.Job
	require.Eventually(t, func() bool {
		job, err := svc.GetLatestJob(context.Background(), applicationID)
		if err != nil || job == nil {
			return false
		}
		latest = job
		return job.IsTerminal()
	}, 5*time.Second, 10*time.Millisecond)
	return latest
}

func TestStartAutomation_ReturnsPendingJobAndRunsInBackground(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY_OPC", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	svc, _ := newService(t, f)

	job, err := svc.StartAutomation(context.Background(), "ABC123", "ONE_PERSON_COMPANY_OPC", "user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "ABC123", job.OrderID)
	assert.Equal(t, models.JobPending, job.Status)
	assert.Equal(t, models.StageInitiated, job.CurrentStage)
	assert.Equal(t, 1, job.Attempts)

	final := waitForTerminal(t, svc, "ABC123")
	assert.Equal(t, job.ID, final.ID)
	assert.Equal(t, models.JobCompleted, final.Status)
	assert.Equal(t, models.StagePackaging, final.CurrentStage)
	assert.Contains(t, f.auditor.snapshot(), "AUTOMATION_STARTED")
}

func TestStartAutomation_NumericIDAndServiceTypeFallback(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	svc, _ := newService(t, f)

	job, err := svc.StartAutomation(context.Background(), "11", "", "")
	require.NoError(t, err)
	assert.Equal(t, "ABC123", job.OrderID)
	assert.Equal(t, "ONE_PERSON_COMPANY", job.Type)

	final := waitForTerminal(t, svc, "11")
	assert.Equal(t, models.JobCompleted, final.Status)
}

func TestStartAutomation_CountsAttemptsPerOrder(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	app.UploadedDocuments.Set(panMember, "same")
	app.UploadedDocuments.Set(panNominee, "same")
	f := newFixture(t, Options{}, app)
	svc, _ := newService(t, f)

	first, err := svc.StartAutomation(context.Background(), "ABC123", "ONE_PERSON_COMPANY", "user-1")
	require.NoError(t, err)
	failed := waitForTerminal(t, svc, "ABC123")
	assert.Equal(t, first.ID, failed.ID)
	assert.Equal(t, models.JobFailed, failed.Status)

	f.clock.Advance(time.Second)
	second, err := svc.StartAutomation(context.Background(), "ABC123", "ONE_PERSON_COMPANY", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Attempts)
	assert.NotEqual(t, first.ID, second.ID)

	latest := waitForTerminal(t, svc, "ABC123")
	assert.Equal(t, second.ID, latest.ID)
}

func TestStartAutomation_UnknownApplication(t *testing.T) {
	f := newFixture(t, Options{})
	svc, _ := newService(t, f)

	job, err := svc.StartAutomation(context.Background(), "NOPE", "ONE_PERSON_COMPANY", "user-1")
	assert.Nil(t, job)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	n, _ := f.jobs.CountForOrder(context.Background(), "NOPE")
	assert.Zero(t, n)
}

func TestStartAutomation_StoppedPoolFailsTheJob(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	svc, pool := newService(t, f)
	require.NoError(t, pool.Stop(context.Background()))

	_, err := svc.StartAutomation(context.Background(), "ABC123", "ONE_PERSON_COMPANY", "user-1")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))

	latest, err := svc.GetLatestJob(context.Background(), "ABC123")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, models.JobFailed, latest.Status)
	require.NotNil(t, latest.LastError)
	assert.Equal(t, ErrPoolStopped.Error(), *latest.LastError)
}

func TestGetLatestJob_NoJobsYet(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	svc, _ := newService(t, f)

	job, err := svc.GetLatestJob(context.Background(), "ABC123")
	assert.NoError(t, err)
	assert.Nil(t, job)

	job, err = svc.GetLatestJob(context.Background(), "UNKNOWN")
	assert.NoError(t, err)
	assert.Nil(t, job)
}
