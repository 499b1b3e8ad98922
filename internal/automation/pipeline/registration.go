package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/strategy"
	"service-automation/internal/common/errors"
	"service-automation/internal/models"
)

// runRegistration is the flagship flow. Each step leaves a status label on
// the application, so a failed run shows how far it got.
func (o *Orchestrator) runRegistration(ctx context.Context, r *run, flagship *strategy.PrivateLimited) error {
	var generated map[models.DraftName]string

	err := r.runSteps(ctx, []step{
		{stage: models.StageDocumentVerification, fn: func(ctx context.Context) error {
			o.pause()
			if err := flagship.Validate(r.app); err != nil {
				r.app.Status = models.StatusDocumentsRejected
				if saveErr := r.saveApplication(ctx); saveErr != nil {
					r.log.Warn("failed to record rejected documents", map[string]interface{}{
						"error": saveErr.Error(),
					})
				}
				return err
			}
			r.app.Status = models.StatusDocumentsVerified
			return r.saveApplication(ctx)
		}},
		{stage: models.StageDocumentGeneration, fn: func(ctx context.Context) error {
			o.pause()
			drafts, err := flagship.Engine().GenerateAllDocuments(ctx, r.app)
			if err != nil {
				return err
			}
			generated = drafts
			r.app.GeneratedDrafts.MergeMap(drafts)
			r.app.Status = models.StatusDocsGenerated
			r.logf(ctx, models.LevelInfo, "Generated %d registration documents", len(drafts))
			return r.saveApplication(ctx)
		}},
		{stage: models.StageQualityCheck, fn: func(ctx context.Context) error {
			if err := o.inspect(ctx, flagship, generated); err != nil {
				r.app.Status = models.StatusQAFailed
				if saveErr := r.saveApplication(ctx); saveErr != nil {
					r.log.Warn("failed to record quality check failure", map[string]interface{}{
						"error": saveErr.Error(),
					})
				}
				return err
			}
			if err := o.buildPackage(ctx, r, flagship); err != nil {
				return err
			}
			r.app.Status = models.StatusReadyForPortal
			return r.saveApplication(ctx)
		}},
	})
	if err != nil {
		return r.fail(ctx, err)
	}
	return r.complete(ctx)
}

// inspect checks that every generated document exists and is non-empty.
// All problems are reported together.
func (o *Orchestrator) inspect(ctx context.Context, flagship *strategy.PrivateLimited, generated map[models.DraftName]string) error {
	st := o.store
	if st == nil {
		st = flagship.Engine().Store()
	}

	var problems []string
	for _, name := range sortedDrafts(generated) {
		ok, err := st.Exists(ctx, generated[name])
		if err != nil {
			return errors.NewStorageError("quality check", err)
		}
		if !ok {
			problems = append(problems, fmt.Sprintf("%s missing", name))
			continue
		}

		data, err := st.Read(ctx, generated[name])
		switch {
		case stderrors.Is(err, artifacts.ErrNotFound):
			problems = append(problems, fmt.Sprintf("%s missing", name))
		case err != nil:
			return errors.NewStorageError("quality check", err)
		case len(strings.TrimSpace(string(data))) == 0:
			problems = append(problems, fmt.Sprintf("%s empty", name))
		}
	}
	if len(generated) == 0 {
		problems = append(problems, "no documents generated")
	}
	if len(problems) > 0 {
		return errors.NewQualityCheckError(strings.Join(problems, ", "))
	}
	return nil
}

func sortedDrafts(generated map[models.DraftName]string) []models.DraftName {
	out := make([]models.DraftName, 0, len(generated))
	for name := range generated {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
