package drafting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-automation/internal/automation/artifacts"
	apperrors "service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/models"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, artifacts.Store) {
	t.Helper()
	store := artifacts.NewFsStore(afero.NewMemMapFs())
	engine, err := NewEngine(store, testclock.NewClock(fixedNow), logger.NewTestLogger(t))
	require.NoError(t, err)
	return engine, store
}

func privateLimitedApp(plan models.Plan) *models.Application {
	return &models.Application{
		SubmissionID: "ABC123",
		ServiceType:  "PRIVATE_LIMITED_COMPANY_REGISTRATION",
		Plan:         plan,
		Details: models.CompanyDetails{
			ProposedNames:     []string{"Acme Widgets Private Limited", "Acme Tools"},
			RegisteredAddress: "12 MG Road, Bengaluru 560001",
			AuthorizedCapital: 1000000,
			PaidUpCapital:     100000,
			BusinessObjective: "Manufacture of widgets",
			Directors:         []models.Person{{Name: "Asha Rao", DIN: "01234567"}, {Name: "Vikram Shah"}},
			Shareholders:      []models.Person{{Name: "Asha Rao", Shares: 5000}, {Name: "Vikram Shah", Shares: 5000}},
		},
	}
}

// ==========================
// Plan gating
// ==========================

func TestGenerateAllDocuments_PlanGating(t *testing.T) {
	tests := []struct {
		plan     models.Plan
		expected []models.DraftName
	}{
		{"", []models.DraftName{models.DraftMOA, models.DraftAOA, models.DraftNameReservation}},
		{models.PlanBasic, []models.DraftName{models.DraftMOA, models.DraftAOA, models.DraftNameReservation}},
		{models.PlanStandard, []models.DraftName{models.DraftMOA, models.DraftAOA, models.DraftNameReservation, models.DraftShareCertificate}},
		{models.PlanPremium, []models.DraftName{
			models.DraftMOA, models.DraftAOA, models.DraftNameReservation,
			models.DraftShareCertificate, models.DraftGSTRegistrationForm, models.DraftBoardResolution,
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.plan), func(t *testing.T) {
			engine, store := newTestEngine(t)

			drafts, err := engine.GenerateAllDocuments(context.Background(), privateLimitedApp(tt.plan))
			require.NoError(t, err)

			var keys []models.DraftName
			for k := range drafts {
				keys = append(keys, k)
			}
			assert.ElementsMatch(t, tt.expected, keys)

			for doc, ref := range drafts {
				assert.Equal(t, DraftPath("ABC123", doc), ref)
				ok, err := store.Exists(context.Background(), ref)
				require.NoError(t, err)
				assert.True(t, ok, "draft %s not written", doc)
			}
		})
	}
}

func TestGenerateAllDocuments_RendersApplicationData(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	drafts, err := engine.GenerateAllDocuments(ctx, privateLimitedApp(models.PlanBasic))
	require.NoError(t, err)
	assert.Equal(t, "/registrations/ABC123/drafts/ABC123_MOA.md", drafts[models.DraftMOA])

	moa, err := store.Read(ctx, drafts[models.DraftMOA])
	require.NoError(t, err)
	assert.Contains(t, string(moa), "ACME WIDGETS PRIVATE LIMITED")
	assert.Contains(t, string(moa), "Karnataka")
	assert.Contains(t, string(moa), "Rs. 10,00,000")
	assert.Contains(t, string(moa), "| Asha Rao | 5000 |")
	assert.Contains(t, string(moa), "2026-03-14")

	names, err := store.Read(ctx, drafts[models.DraftNameReservation])
	require.NoError(t, err)
	assert.Contains(t, string(names), "1. ACME WIDGETS PRIVATE LIMITED")
	assert.Contains(t, string(names), "2. ACME TOOLS")
}

// ==========================
// Safe degradation
// ==========================

func TestGenerateAllDocuments_MissingFieldsRenderEmpty(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	app := &models.Application{SubmissionID: "EMPTY1", Plan: models.PlanPremium}

	drafts, err := engine.GenerateAllDocuments(ctx, app)
	require.NoError(t, err)
	require.Len(t, drafts, 6)

	for doc, ref := range drafts {
		data, err := store.Read(ctx, ref)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "<no value>", "draft %s", doc)
	}

	moa, _ := store.Read(ctx, drafts[models.DraftMOA])
	assert.Contains(t, string(moa), "situated in India.")
}

func TestGenerateAllDocuments_IsIdempotent(t *testing.T) {
	engine, _ := newTestEngine(t)
	app := privateLimitedApp(models.PlanStandard)

	first, err := engine.GenerateAllDocuments(context.Background(), app)
	require.NoError(t, err)
	second, err := engine.GenerateAllDocuments(context.Background(), app)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// ==========================
// Failures
// ==========================

type failingStore struct{ artifacts.Store }

func (failingStore) Write(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func TestGenerateAllDocuments_WriteFailureIsDraftingError(t *testing.T) {
	engine, err := NewEngine(failingStore{}, testclock.NewClock(fixedNow), logger.NewNoOpLogger())
	require.NoError(t, err)

	_, err = engine.GenerateAllDocuments(context.Background(), privateLimitedApp(models.PlanBasic))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDraftingFailed))
	assert.Contains(t, err.Error(), "disk full")
}

func TestRenderForm(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()
	app := privateLimitedApp(models.PlanBasic)
	app.UploadedDocuments.Set("PAN_CARD_APPLICANT", "s3://pan")

	p := artifacts.Path("tax-filings", "ABC123", artifacts.CategoryForms, "ABC123_ITR_FORM.md")
	ref, err := engine.RenderForm(ctx, app, models.DraftITRForm, p)
	require.NoError(t, err)

	data, err := store.Read(ctx, ref)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# ITR FORM")
	assert.Contains(t, string(data), "- PAN_CARD_APPLICANT")
}

// ==========================
// Helpers
// ==========================

func TestJurisdiction(t *testing.T) {
	assert.Equal(t, "Maharashtra", Jurisdiction("Flat 2, Navi Mumbai, Maharashtra"))
	assert.Equal(t, "Delhi", Jurisdiction("connaught place, new delhi"))
	assert.Equal(t, "India", Jurisdiction(""))
	assert.Equal(t, "India", Jurisdiction("Somewhere remote"))
}

func TestFormatRupees(t *testing.T) {
	assert.Equal(t, "", FormatRupees(0))
	assert.Equal(t, "Rs. 500", FormatRupees(500))
	assert.Equal(t, "Rs. 1,00,000", FormatRupees(100000))
	assert.Equal(t, "Rs. 15,00,000", FormatRupees(1500000))
	assert.Equal(t, "Rs. -1,000", FormatRupees(-1000))
}
