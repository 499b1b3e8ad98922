package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeMSME         = "MSME_UDYAM_REGISTRATION"
	TypeISO          = "ISO_CERTIFICATION"
	TypeStartupIndia = "STARTUP_INDIA_REGISTRATION"

	certificationNamespace = "certifications"
)

var msmeSpec = spec{
	serviceType: TypeMSME,
	required: docs(
		party(models.RoleApplicant, models.KindPAN, models.KindAadhaar),
		entity(models.DocBankStatement),
	),
	drafts: drafts(artifacts.CategoryForms, models.DraftUdyamApplication),
}

var isoSpec = spec{
	serviceType: TypeISO,
	required:    entity(models.DocCompanyPAN, models.DocIncorporationCert, models.DocQualityManual),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftISOApplication),
		drafts(artifacts.CategoryInternal, models.DraftGapAnalysis)...,
	),
}

var startupIndiaSpec = spec{
	serviceType: TypeStartupIndia,
	required: docs(
		entity(models.DocIncorporationCert, models.DocCompanyPAN, models.DocPitchDeck),
		parties(models.RoleDirector, 1, models.KindPAN),
	),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftDPIITApplication),
		drafts(artifacts.CategoryDrafts, models.DraftInnovationWriteup)...,
	),
}

func certificationStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(certificationNamespace, engine, msmeSpec, isoSpec, startupIndiaSpec)
}
