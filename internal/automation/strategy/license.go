package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeFSSAI        = "FSSAI_LICENSE"
	TypeTradeLicense = "TRADE_LICENSE"
	TypeIEC          = "IMPORT_EXPORT_CODE"

	licenseNamespace = "licenses"
)

var fssaiSpec = spec{
	serviceType: TypeFSSAI,
	required: docs(
		party(models.RoleApplicant, models.KindPAN, models.KindPhoto),
		entity(models.DocFoodSafetyPlan, models.DocPremisesLayout, models.DocRegisteredOfficeProof),
	),
	drafts:  drafts(artifacts.CategoryForms, models.DraftFSSAIForm),
	premium: drafts(artifacts.CategoryInternal, models.DraftRenewalReminder),
}

var tradeLicenseSpec = spec{
	serviceType: TypeTradeLicense,
	required: docs(
		party(models.RoleApplicant, models.KindPAN),
		entity(models.DocRegisteredOfficeProof, models.DocRentAgreement, models.DocPremisesLayout),
	),
	drafts:  drafts(artifacts.CategoryForms, models.DraftTradeLicenseForm),
	premium: drafts(artifacts.CategoryInternal, models.DraftRenewalReminder),
}

var iecSpec = spec{
	serviceType: TypeIEC,
	required: docs(
		party(models.RoleApplicant, models.KindPAN),
		entity(models.DocCancelledCheque, models.DocRegisteredOfficeProof),
	),
	drafts: drafts(artifacts.CategoryForms, models.DraftIECForm),
}

func licenseStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(licenseNamespace, engine, fssaiSpec, tradeLicenseSpec, iecSpec)
}
