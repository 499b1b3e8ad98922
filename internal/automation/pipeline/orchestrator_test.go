package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/automation/store"
	"service-automation/internal/automation/strategy"
	"service-automation/internal/common/logger"
	"service-automation/internal/common/observability"
	"service-automation/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

var epoch = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	apps      *store.MemoryApplications
	jobs      *store.MemoryJobs
	artifacts artifacts.Store
	registry  *strategy.Registry
	clock     *testclock.Clock
	auditor   *recordingAuditor
	deps      Dependencies
	seq       int
	orch      *Orchestrator
}

func newFixture(t *testing.T, opts Options, apps ...*models.Application) *fixture {
	t.Helper()
	return newFixtureWithStore(t, opts, artifacts.NewFsStore(afero.NewMemMapFs()), apps...)
}

func newFixtureWithStore(t *testing.T, opts Options, st artifacts.Store, apps ...*models.Application) *fixture {
	t.Helper()
	clk := testclock.NewClock(epoch)
	log := logger.NewTestLogger(t)

	engine, err := drafting.NewEngine(st, clk, log)
	require.NoError(t, err)

	f := &fixture{
		apps:      store.NewMemoryApplications(apps...),
		jobs:      store.NewMemoryJobs(),
		artifacts: st,
		registry:  strategy.NewDefaultRegistry(engine),
		clock:     clk,
		auditor:   &recordingAuditor{},
	}
	f.deps = Dependencies{
		Applications: f.apps,
		Jobs:         f.jobs,
		Registry:     f.registry,
		Artifacts:    st,
		Auditor:      f.auditor,
		Clock:        clk,
	}
	f.orch = NewOrchestrator(f.deps, opts, log)
	return f
}

// queue records a PENDING job the way StartAutomation would.
func (f *fixture) queue(t *testing.T, orderID, serviceType string) string {
	t.Helper()
	f.seq++
	id := fmt.Sprintf("job-%s-%d", orderID, f.seq)
	require.NoError(t, f.jobs.Create(context.Background(), &models.Job{
		ID:           id,
		OrderID:      orderID,
		Type:         serviceType,
		CurrentStage: models.StageInitiated,
		Status:       models.JobPending,
		Attempts:     1,
		CreatedAt:    epoch,
		UpdatedAt:    epoch,
	}))
	return id
}

func (f *fixture) job(t *testing.T, id string) *models.Job {
	t.Helper()
	job, err := f.jobs.Get(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, job)
	return job
}

func (f *fixture) app(t *testing.T, ref string) *models.Application {
	t.Helper()
	app, err := f.apps.Load(context.Background(), ref)
	require.NoError(t, err)
	require.NotNil(t, app)
	return app
}

// completeApplication uploads every document the strategy requires, each
// with a distinct reference.
func completeApplication(t *testing.T, serviceType string, plan models.Plan) *models.Application {
	t.Helper()
	s, err := strategy.NewDefaultRegistry(nil).Resolve(serviceType)
	require.NoError(t, err)

	app := &models.Application{
		ID:           11,
		SubmissionID: "ABC123",
		ServiceType:  serviceType,
		Plan:         plan,
		Status:       "SUBMITTED",
		Details: models.CompanyDetails{
			ProposedNames:     []string{"Acme Ventures"},
			RegisteredAddress: "12 MG Road, Bengaluru",
			AuthorizedCapital: 1500000,
			Directors:         []models.Person{{Name: "Asha Rao"}, {Name: "Vikram Shah"}},
		},
	}
	for i, doc := range s.RequiredDocuments() {
		app.UploadedDocuments.Set(doc, fmt.Sprintf("s3://uploads/ABC123/%d", i))
	}
	return app
}

var (
	panMember  = models.PartyDocument(models.KindPAN, models.RoleMember, 0)
	panNominee = models.PartyDocument(models.KindPAN, models.RoleNominee, 0)
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recordingAuditor) LogEvent(_ context.Context, refID, eventType, _ string, payload map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry := eventType
	if stage, ok := payload["stage"]; ok && eventType == "AUTOMATION_STAGE" {
		entry = fmt.Sprintf("%s:%v", eventType, stage)
	}
	r.events = append(r.events, entry)
	return r.err
}

func (r *recordingAuditor) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// failingStore refuses every write.
type failingStore struct{}

func (failingStore) Write(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func (failingStore) Read(_ context.Context, p string) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s", artifacts.ErrNotFound, p)
}

func (failingStore) Exists(context.Context, string) (bool, error) { return false, nil }

// blankingStore writes empty artifacts.
type blankingStore struct {
	artifacts.Store
}

func (b blankingStore) Write(ctx context.Context, p string, _ []byte) (string, error) {
	return b.Store.Write(ctx, p, nil)
}

// droppingStore acknowledges writes without storing anything.
type droppingStore struct {
	artifacts.Store
}

func (droppingStore) Write(_ context.Context, p string, _ []byte) (string, error) {
	return p, nil
}

type panickingNotifier struct{}

func (panickingNotifier) JobFinished(context.Context, *models.Application, *models.Job) error {
	panic("smtp client nil")
}

type panickingStrategy struct{}

func (panickingStrategy) ServiceType() string                      { return "EXPLODING_SERVICE" }
func (panickingStrategy) RequiredDocuments() []models.DocumentType { return nil }
func (panickingStrategy) Validate(*models.Application) error       { panic("boom") }
func (panickingStrategy) GenerateDrafts(context.Context, *models.Application) (map[models.DraftName]string, error) {
	return nil, nil
}

// ==========================
// One Person Company scenarios
// ==========================

func TestRunJob_OPCWithDistinctPANsCompletes(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY_OPC", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY_OPC")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, models.StagePackaging, job.CurrentStage)
	assert.Nil(t, job.LastError)

	saved := f.app(t, "ABC123")
	assert.Equal(t, models.StatusReadyForFiling, saved.Status)
	assert.ElementsMatch(t, []models.DraftName{
		models.DraftSpicePlusForm, models.DraftMOA, models.DraftAOA,
		models.DraftNomineeConsent, models.DraftDirectorDeclaration,
	}, saved.GeneratedDrafts.Keys())

	require.NotNil(t, saved.PackagePath)
	assert.Equal(t, "/registrations/ABC123/package/ABC123_package.zip", *saved.PackagePath)

	data, err := f.artifacts.Read(context.Background(), *saved.PackagePath)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 5)

	assert.Equal(t, []string{
		"AUTOMATION_STAGE:VERIFICATION",
		"AUTOMATION_STAGE:DRAFTING",
		"AUTOMATION_STAGE:PACKAGING",
		"AUTOMATION_COMPLETED",
	}, f.auditor.snapshot())
}

func TestRunJob_OPCWithSamePANFailsAtVerification(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY_OPC", models.PlanBasic)
	app.UploadedDocuments.Set(panMember, "s3://uploads/ABC123/pan")
	app.UploadedDocuments.Set(panNominee, "s3://uploads/ABC123/pan")
	f := newFixture(t, Options{}, app)
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY_OPC")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageVerification, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Equal(t, "Member and Nominee cannot be the same person", *job.LastError)

	last := job.Logs[len(job.Logs)-1]
	assert.Equal(t, models.LevelError, last.Level)
	assert.Equal(t, "Member and Nominee cannot be the same person", last.Message)

	saved := f.app(t, "ABC123")
	assert.Equal(t, 0, saved.GeneratedDrafts.Len())
	assert.Nil(t, saved.PackagePath)
	assert.Equal(t, "SUBMITTED", saved.Status)
	assert.Equal(t, "AUTOMATION_FAILED", f.auditor.snapshot()[len(f.auditor.snapshot())-1])
}

// ==========================
// Failure mapping
// ==========================

func TestRunJob_StopsAtTheFailingStage(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixtureWithStore(t, Options{}, failingStore{}, app)
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageDrafting, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "disk full")

	for _, entry := range job.Logs {
		assert.NotContains(t, entry.Message, string(models.StagePackaging))
	}
	assert.Nil(t, f.app(t, "ABC123").PackagePath)
}

func TestRunJob_MissingApplicationIsContextLost(t *testing.T) {
	f := newFixture(t, Options{})
	id := f.queue(t, "GONE42", "ONE_PERSON_COMPANY")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageInitiated, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Equal(t, ContextLost, *job.LastError)
}

func TestRunJob_UnknownServiceType(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	id := f.queue(t, "ABC123", "SPACE_TRAVEL_PERMIT")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	require.NotNil(t, job.LastError)
	assert.Equal(t, "No automation strategy found for service type: SPACE_TRAVEL_PERMIT", *job.LastError)
}

func TestRunJob_RecoversFromPanics(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	require.NoError(t, f.registry.Register("EXPLODING", panickingStrategy{}))
	id := f.queue(t, "ABC123", "EXPLODING_SERVICE")

	require.NotPanics(t, func() {
		require.NoError(t, f.orch.RunJob(context.Background(), id))
	})

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageVerification, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "unexpected failure: boom")
}

func TestRunJob_MissingOrFinishedJobIsNoOp(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.orch.RunJob(context.Background(), "does-not-exist"))

	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f = newFixture(t, Options{}, app)
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")
	require.NoError(t, f.orch.RunJob(context.Background(), id))
	first := f.job(t, id)

	require.NoError(t, f.orch.RunJob(context.Background(), id))
	assert.Equal(t, first, f.job(t, id))
}

func TestRunJob_SideEffectFailuresDoNotAbort(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	f.auditor.err = errors.New("audit sink down")
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")

	require.NoError(t, f.orch.RunJob(context.Background(), id))
	assert.Equal(t, models.JobCompleted, f.job(t, id).Status)
}

func TestRunJob_PanickingNotifierLeavesCompletedJobAlone(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY_OPC", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	f.deps.Notifier = panickingNotifier{}
	orch := NewOrchestrator(f.deps, Options{}, logger.NewTestLogger(t))
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY_OPC")

	require.NotPanics(t, func() {
		require.NoError(t, orch.RunJob(context.Background(), id))
	})

	job := f.job(t, id)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Nil(t, job.LastError)
	last := job.Logs[len(job.Logs)-1]
	assert.Equal(t, models.LevelInfo, last.Level)
	assert.Equal(t, "Automation completed", last.Message)
	assert.Equal(t, models.StatusReadyForFiling, f.app(t, "ABC123").Status)
}

// ==========================
// Drafts and timing
// ==========================

func TestRunJob_RerunKeepsDraftKeySet(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)

	first := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")
	require.NoError(t, f.orch.RunJob(context.Background(), first))
	keys := f.app(t, "ABC123").GeneratedDrafts.Keys()

	f.clock.Advance(time.Minute)
	second := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")
	require.NoError(t, f.orch.RunJob(context.Background(), second))

	assert.Equal(t, keys, f.app(t, "ABC123").GeneratedDrafts.Keys())
}

func TestRunJob_WaitsForStageDelay(t *testing.T) {
	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	delay := 1500 * time.Millisecond
	f := newFixture(t, Options{StageDelay: delay}, app)
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")

	done := make(chan error, 1)
	go func() { done <- f.orch.RunJob(context.Background(), id) }()

	// verification, then drafting
	require.NoError(t, f.clock.WaitAdvance(delay, time.Second, 1))
	require.NoError(t, f.clock.WaitAdvance(delay, time.Second, 1))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish after both delays elapsed")
	}
	assert.Equal(t, models.JobCompleted, f.job(t, id).Status)
}

func TestRunJob_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	obs, err := observability.NewWithRegisterer("automation-test", prometheus.NewRegistry(),
		sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	require.NoError(t, err)

	app := completeApplication(t, "ONE_PERSON_COMPANY", models.PlanBasic)
	f := newFixture(t, Options{}, app)
	f.deps.Observability = obs
	orch := NewOrchestrator(f.deps, Options{}, logger.NewNoOpLogger())
	id := f.queue(t, "ABC123", "ONE_PERSON_COMPANY")

	require.NoError(t, orch.RunJob(context.Background(), id))

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"automation.stage", "automation.stage", "automation.stage", "automation.job"}, names)
}

// ==========================
// Registration flow
// ==========================

func TestRunJob_RegistrationFlowReachesPortal(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanPremium)
	f := newFixture(t, Options{RegistrationFlow: true}, app)
	id := f.queue(t, "ABC123", "PRIVATE_LIMITED_COMPANY_REGISTRATION")

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, models.StageQualityCheck, job.CurrentStage)

	saved := f.app(t, "ABC123")
	assert.Equal(t, models.StatusReadyForPortal, saved.Status)
	assert.ElementsMatch(t, drafting.Documents(models.PlanPremium), saved.GeneratedDrafts.Keys())
	require.NotNil(t, saved.PackagePath)
	assert.Equal(t, "/registrations/ABC123/package/ABC123_package.zip", *saved.PackagePath)
}

func TestRunJob_RegistrationFlowRejectsDocuments(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanBasic)
	app.UploadedDocuments = models.RefMap[models.DocumentType]{}
	app.UploadedDocuments.Set(models.DocUtilityBill, "s3://uploads/bill")
	f := newFixture(t, Options{RegistrationFlow: true}, app)
	id := f.queue(t, "ABC123", strategy.TypePrivateLimited)

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageDocumentVerification, job.CurrentStage)
	assert.Contains(t, *job.LastError, "Missing required documents")
	assert.Equal(t, models.StatusDocumentsRejected, f.app(t, "ABC123").Status)
}

func TestRunJob_RegistrationFlowDraftingFailureKeepsVerifiedStatus(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanBasic)
	f := newFixtureWithStore(t, Options{RegistrationFlow: true}, failingStore{}, app)
	id := f.queue(t, "ABC123", strategy.TypePrivateLimited)

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageDocumentGeneration, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "disk full")

	saved := f.app(t, "ABC123")
	assert.Equal(t, models.StatusDocumentsVerified, saved.Status)
	assert.Equal(t, 0, saved.GeneratedDrafts.Len())
	assert.Nil(t, saved.PackagePath)
}

func TestRunJob_RegistrationFlowFailsQualityCheckOnEmptyDrafts(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanBasic)
	st := blankingStore{Store: artifacts.NewFsStore(afero.NewMemMapFs())}
	f := newFixtureWithStore(t, Options{RegistrationFlow: true}, st, app)
	id := f.queue(t, "ABC123", strategy.TypePrivateLimited)

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageQualityCheck, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "MOA empty")

	saved := f.app(t, "ABC123")
	assert.Equal(t, models.StatusQAFailed, saved.Status)
	assert.Equal(t, 3, saved.GeneratedDrafts.Len())
}

func TestRunJob_RegistrationFlowReportsMissingDrafts(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanBasic)
	st := droppingStore{Store: artifacts.NewFsStore(afero.NewMemMapFs())}
	f := newFixtureWithStore(t, Options{RegistrationFlow: true}, st, app)
	id := f.queue(t, "ABC123", strategy.TypePrivateLimited)

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Equal(t, models.StageQualityCheck, job.CurrentStage)
	require.NotNil(t, job.LastError)
	assert.Contains(t, *job.LastError, "MOA missing")
	assert.NotContains(t, *job.LastError, "empty")
	assert.Equal(t, models.StatusQAFailed, f.app(t, "ABC123").Status)
}

func TestRunJob_FlagshipUsesGenericStagesWithoutRegistrationFlow(t *testing.T) {
	app := completeApplication(t, strategy.TypePrivateLimited, models.PlanStandard)
	f := newFixture(t, Options{}, app)
	id := f.queue(t, "ABC123", strategy.TypePrivateLimited)

	require.NoError(t, f.orch.RunJob(context.Background(), id))

	job := f.job(t, id)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, models.StagePackaging, job.CurrentStage)
	assert.Equal(t, models.StatusReadyForFiling, f.app(t, "ABC123").Status)
	assert.Equal(t, 4, f.app(t, "ABC123").GeneratedDrafts.Len())
}
