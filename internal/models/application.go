// internal/models/application.go
package models

import (
	"strconv"
	"time"
)

// Application is a submitted service request as seen by the automation
// pipeline. It is created outside this module and only mutated here by the
// orchestrator.
type Application struct {
	ID                int64                `json:"id,omitempty"`
	SubmissionID      string               `json:"submissionId"`
	ServiceType       string               `json:"serviceType"`
	Plan              Plan                 `json:"plan,omitempty"`
	Status            string               `json:"status"`
	UploadedDocuments RefMap[DocumentType] `json:"uploadedDocuments"`
	GeneratedDrafts   RefMap[DraftName]    `json:"generatedDrafts"`
	PackagePath       *string              `json:"packagePath,omitempty"`
	Details           CompanyDetails       `json:"details"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// Ref returns the identifier jobs use to point at this application.
// The submission id wins; the numeric id is used for rows that predate it.
func (a *Application) Ref() string {
	if a.SubmissionID != "" {
		return a.SubmissionID
	}
	return strconv.FormatInt(a.ID, 10)
}

// CompanyDetails holds the structured form data used by draft templates.
// Every field is optional from the pipeline's point of view.
type CompanyDetails struct {
	ProposedNames     []string `json:"proposedNames,omitempty"`
	RegisteredAddress string   `json:"registeredAddress,omitempty"`
	AuthorizedCapital int64    `json:"authorizedCapital,omitempty"`
	PaidUpCapital     int64    `json:"paidUpCapital,omitempty"`
	BusinessObjective string   `json:"businessObjective,omitempty"`
	Directors         []Person `json:"directors,omitempty"`
	Shareholders      []Person `json:"shareholders,omitempty"`
	ApplicantEmail    string   `json:"applicantEmail,omitempty"`
}

// PrimaryName returns the first proposed name, or "".
func (d CompanyDetails) PrimaryName() string {
	if len(d.ProposedNames) == 0 {
		return ""
	}
	return d.ProposedNames[0]
}

// Person is an office holder or subscriber listed on the application.
type Person struct {
	Name   string `json:"name"`
	DIN    string `json:"din,omitempty"`
	Shares int64  `json:"shares,omitempty"`
}

// Clone returns a deep copy; RefMap fields would otherwise alias.
func (a *Application) Clone() *Application {
	out := *a
	out.UploadedDocuments = a.UploadedDocuments.Clone()
	out.GeneratedDrafts = a.GeneratedDrafts.Clone()
	if a.PackagePath != nil {
		p := *a.PackagePath
		out.PackagePath = &p
	}
	out.Details.ProposedNames = append([]string(nil), a.Details.ProposedNames...)
	out.Details.Directors = append([]Person(nil), a.Details.Directors...)
	out.Details.Shareholders = append([]Person(nil), a.Details.Shareholders...)
	return &out
}
