package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeTrademark = "TRADEMARK_REGISTRATION"
	TypeCopyright = "COPYRIGHT_REGISTRATION"
	TypePatent    = "PATENT_FILING"

	ipNamespace = "ip-filings"
)

// IP filings are checklist-only; none carries a cross-field rule.

var trademarkSpec = spec{
	serviceType: TypeTrademark,
	required: docs(
		entity(models.DocBrandLogo, models.DocUserAffidavit, models.DocPowerOfAttorney),
		party(models.RoleApplicant, models.KindPAN),
	),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftTrademarkTM1),
		drafts(artifacts.CategoryInternal, models.DraftTrademarkSearch)...,
	),
	premium: drafts(artifacts.CategoryInternal, models.DraftTrademarkClassReport),
}

var copyrightSpec = spec{
	serviceType: TypeCopyright,
	required: docs(
		entity(models.DocWorkSample, models.DocAuthorNOC),
		party(models.RoleApplicant, models.KindPAN),
	),
	drafts: drafts(artifacts.CategoryForms, models.DraftCopyrightForm),
}

var patentSpec = spec{
	serviceType: TypePatent,
	required: docs(
		entity(models.DocInventionDisclosure, models.DocTechnicalDrawings),
		party(models.RoleApplicant, models.KindPAN),
	),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftPatentForm1),
		drafts(artifacts.CategoryDrafts, models.DraftPatentSpecification)...,
	),
}

func ipStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(ipNamespace, engine, trademarkSpec, copyrightSpec, patentSpec)
}
