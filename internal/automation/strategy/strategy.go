// Package strategy holds the per-service-type checklists, validation rules
// and draft sets, plus the registry that dispatches a service type string
// to its strategy.
package strategy

import (
	"context"
	"fmt"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/common/errors"
	"service-automation/internal/models"
)

// Strategy supplies the domain knowledge for one service type. Strategies
// are stateless and never mutate the application they are given.
type Strategy interface {
	ServiceType() string
	RequiredDocuments() []models.DocumentType
	Validate(app *models.Application) error
	GenerateDrafts(ctx context.Context, app *models.Application) (map[models.DraftName]string, error)
}

// Namespaced is implemented by strategies that own an artifact namespace.
type Namespaced interface {
	Namespace() string
}

// Rule is a cross-field check run after the checklist passes.
type Rule func(app *models.Application) error

// DistinctDocuments fails when both documents are present and carry the
// same reference, i.e. one person was uploaded for two roles.
func DistinctDocuments(a, b models.DocumentType, message string) Rule {
	return func(app *models.Application) error {
		refA, okA := app.UploadedDocuments.Get(a)
		refB, okB := app.UploadedDocuments.Get(b)
		if okA && okB && refA == refB {
			return errors.NewValidationError(message)
		}
		return nil
	}
}

// DistinctParties checks every pair of n indexed parties for a repeated
// document of kind. The first clash found is reported.
func DistinctParties(kind models.DocumentKind, role models.PartyRole, n int, label string) []Rule {
	var rules []Rule
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			rules = append(rules, DistinctDocuments(
				models.PartyDocument(kind, role, i),
				models.PartyDocument(kind, role, j),
				fmt.Sprintf("%s %d and %s %d cannot be the same person", label, i, label, j),
			))
		}
	}
	return rules
}

// Draft declares one output of a checklist strategy.
type Draft struct {
	Name     models.DraftName
	Category string
}

func drafts(category string, names ...models.DraftName) []Draft {
	out := make([]Draft, 0, len(names))
	for _, n := range names {
		out = append(out, Draft{Name: n, Category: category})
	}
	return out
}

// Checklist is the declarative strategy used by every service type: a
// required-document list, cross-field rules and a fixed draft set with
// optional plan-tier additions.
type Checklist struct {
	serviceType string
	namespace   string
	required    []models.DocumentType
	rules       []Rule
	drafts      []Draft
	standard    []Draft // added for STANDARD and PREMIUM
	premium     []Draft // added for PREMIUM only
	renderer    *drafting.Engine
}

func (c *Checklist) ServiceType() string { return c.serviceType }

func (c *Checklist) Namespace() string { return c.namespace }

func (c *Checklist) RequiredDocuments() []models.DocumentType {
	out := make([]models.DocumentType, len(c.required))
	copy(out, c.required)
	return out
}

// Validate reports every missing document in one error, then runs the
// cross-field rules in order and stops at the first violation.
func (c *Checklist) Validate(app *models.Application) error {
	if app.UploadedDocuments.Len() == 0 {
		return errors.NewValidationError("No documents uploaded")
	}

	var missing []string
	for _, doc := range c.required {
		if ref, ok := app.UploadedDocuments.Get(doc); !ok || ref == "" {
			missing = append(missing, string(doc))
		}
	}
	if len(missing) > 0 {
		return errors.NewMissingDocumentsError(missing)
	}

	for _, rule := range c.rules {
		if err := rule(app); err != nil {
			return err
		}
	}
	return nil
}

// DraftNames lists the draft keys produced for plan.
func (c *Checklist) DraftNames(plan models.Plan) []models.DraftName {
	var out []models.DraftName
	for _, d := range c.draftsFor(plan) {
		out = append(out, d.Name)
	}
	return out
}

func (c *Checklist) draftsFor(plan models.Plan) []Draft {
	out := append([]Draft(nil), c.drafts...)
	switch plan.Normalized() {
	case models.PlanStandard:
		out = append(out, c.standard...)
	case models.PlanPremium:
		out = append(out, c.standard...)
		out = append(out, c.premium...)
	}
	return out
}

// GenerateDrafts returns the deterministic path of every draft. When a
// renderer is attached each draft is also written as a form document.
func (c *Checklist) GenerateDrafts(ctx context.Context, app *models.Application) (map[models.DraftName]string, error) {
	out := make(map[models.DraftName]string)
	for _, d := range c.draftsFor(app.Plan) {
		p := artifacts.Path(c.namespace, app.SubmissionID, d.Category,
			artifacts.FileName(app.SubmissionID, string(d.Name), "md"))
		if c.renderer != nil {
			ref, err := c.renderer.RenderForm(ctx, app, d.Name, p)
			if err != nil {
				return nil, err
			}
			p = ref
		}
		out[d.Name] = p
	}
	return out, nil
}

// spec is the declaration each family file fills in.
type spec struct {
	serviceType string
	required    []models.DocumentType
	rules       []Rule
	drafts      []Draft
	standard    []Draft
	premium     []Draft
}

func (s spec) build(namespace string, renderer *drafting.Engine) *Checklist {
	return &Checklist{
		serviceType: s.serviceType,
		namespace:   namespace,
		required:    s.required,
		rules:       s.rules,
		drafts:      s.drafts,
		standard:    s.standard,
		premium:     s.premium,
		renderer:    renderer,
	}
}

// docs concatenates document lists.
func docs(groups ...[]models.DocumentType) []models.DocumentType {
	var out []models.DocumentType
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// party lists kinds for a single-occupant role (no index suffix).
func party(role models.PartyRole, kinds ...models.DocumentKind) []models.DocumentType {
	out := make([]models.DocumentType, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, models.PartyDocument(k, role, 0))
	}
	return out
}

// parties lists kinds for n indexed occupants of role.
func parties(role models.PartyRole, n int, kinds ...models.DocumentKind) []models.DocumentType {
	out := make([]models.DocumentType, 0, n*len(kinds))
	for i := 1; i <= n; i++ {
		for _, k := range kinds {
			out = append(out, models.PartyDocument(k, role, i))
		}
	}
	return out
}

func entity(list ...models.DocumentType) []models.DocumentType {
	return list
}
