// Package drafting renders application data into draft documents using
// embedded text templates and writes them to artifact storage.
package drafting

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/juju/clock"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/common/errors"
	"service-automation/internal/common/logger"
	"service-automation/internal/models"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

const (
	// Namespace is the artifact namespace for registration drafts.
	Namespace = "registrations"
	draftExt  = "md"
	formTmpl  = "form.tmpl"
)

// Engine produces the flagship registration document set and the generic
// form drafts used by checklist strategies.
type Engine struct {
	store     artifacts.Store
	clock     clock.Clock
	log       logger.Logger
	templates *template.Template
}

// NewEngine parses the embedded templates once.
func NewEngine(store artifacts.Store, clk clock.Clock, log logger.Logger) (*Engine, error) {
	tmpl, err := template.New("drafts").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"inc":   func(i int) int { return i + 1 },
	}).ParseFS(templateFiles, "templates/*.tmpl")
	if err != nil {
		return nil, &TemplateError{Template: "templates/*.tmpl", Cause: err}
	}
	return &Engine{store: store, clock: clk, log: log.Named("drafting"), templates: tmpl}, nil
}

// Store exposes the artifact store drafts are written to.
func (e *Engine) Store() artifacts.Store {
	return e.store
}

// Documents lists the draft set for a plan, in generation order.
func Documents(plan models.Plan) []models.DraftName {
	docs := []models.DraftName{models.DraftMOA, models.DraftAOA, models.DraftNameReservation}
	switch plan.Normalized() {
	case models.PlanStandard:
		docs = append(docs, models.DraftShareCertificate)
	case models.PlanPremium:
		docs = append(docs, models.DraftShareCertificate, models.DraftGSTRegistrationForm, models.DraftBoardResolution)
	}
	return docs
}

// DraftPath is the deterministic location of one registration draft.
func DraftPath(submissionID string, doc models.DraftName) string {
	return artifacts.Path(Namespace, submissionID, artifacts.CategoryDrafts,
		artifacts.FileName(submissionID, string(doc), draftExt))
}

// GenerateAllDocuments renders and stores every draft for the application's
// plan. Regeneration overwrites the same paths.
func (e *Engine) GenerateAllDocuments(ctx context.Context, app *models.Application) (map[models.DraftName]string, error) {
	data := e.documentData(app)
	out := make(map[models.DraftName]string)

	for _, doc := range Documents(app.Plan) {
		ref, err := e.render(ctx, templateName(doc), DraftPath(app.SubmissionID, doc), data)
		if err != nil {
			return nil, errors.NewDraftingError(string(doc), err)
		}
		out[doc] = ref
	}

	e.log.Info("registration drafts generated", map[string]interface{}{
		"submissionId": app.SubmissionID,
		"plan":         string(app.Plan.Normalized()),
		"count":        len(out),
	})
	return out, nil
}

// RenderForm writes a generic form draft titled after doc to p.
func (e *Engine) RenderForm(ctx context.Context, app *models.Application, doc models.DraftName, p string) (string, error) {
	data := e.documentData(app)
	data.Title = strings.ReplaceAll(string(doc), "_", " ")

	ref, err := e.render(ctx, formTmpl, p, data)
	if err != nil {
		return "", errors.NewDraftingError(string(doc), err)
	}
	return ref, nil
}

func (e *Engine) render(ctx context.Context, name, p string, data DocumentData) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", &TemplateError{Template: name, Cause: err}
	}
	return e.store.Write(ctx, p, buf.Bytes())
}

func templateName(doc models.DraftName) string {
	return strings.ToLower(string(doc)) + ".tmpl"
}

// DocumentData is the template input. Every field is a plain value so a
// missing application detail renders as an empty string.
type DocumentData struct {
	Title             string
	SubmissionID      string
	ServiceType       string
	Plan              string
	CompanyName       string
	ProposedNames     []string
	RegisteredAddress string
	Jurisdiction      string
	AuthorizedCapital string
	PaidUpCapital     string
	BusinessObjective string
	Directors         []models.Person
	Shareholders      []models.Person
	Documents         []string
	GeneratedOn       string
}

func (e *Engine) documentData(app *models.Application) DocumentData {
	d := app.Details
	docs := make([]string, 0, app.UploadedDocuments.Len())
	for _, k := range app.UploadedDocuments.Keys() {
		docs = append(docs, string(k))
	}
	return DocumentData{
		SubmissionID:      app.SubmissionID,
		ServiceType:       app.ServiceType,
		Plan:              string(app.Plan.Normalized()),
		CompanyName:       strings.ToUpper(d.PrimaryName()),
		ProposedNames:     d.ProposedNames,
		RegisteredAddress: d.RegisteredAddress,
		Jurisdiction:      Jurisdiction(d.RegisteredAddress),
		AuthorizedCapital: FormatRupees(d.AuthorizedCapital),
		PaidUpCapital:     FormatRupees(d.PaidUpCapital),
		BusinessObjective: d.BusinessObjective,
		Directors:         d.Directors,
		Shareholders:      d.Shareholders,
		Documents:         docs,
		GeneratedOn:       e.clock.Now().UTC().Format("2006-01-02"),
	}
}

// FormatRupees renders an amount with Indian digit grouping, e.g.
// 1500000 -> "Rs. 15,00,000". Zero renders as "".
func FormatRupees(amount int64) string {
	if amount == 0 {
		return ""
	}
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		return fmt.Sprintf("Rs. %s%s", sign, s)
	}

	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return fmt.Sprintf("Rs. %s%s,%s", sign, strings.Join(groups, ","), tail)
}
