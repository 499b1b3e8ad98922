package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeAnnualFiling = "ROC_ANNUAL_FILING"
	TypeDIR3KYC      = "DIR3_KYC"

	rocNamespace = "roc-filings"
)

var annualFilingSpec = spec{
	serviceType: TypeAnnualFiling,
	required: entity(
		models.DocAuditReport, models.DocFinancialStatements,
		models.DocShareholdingPattern, models.DocIncorporationCert,
	),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftAOC4, models.DraftMGT7),
		drafts(artifacts.CategoryDrafts, models.DraftDirectorsReport)...,
	),
	premium: drafts(artifacts.CategoryInternal, models.DraftComplianceCalendar),
}

var dir3KYCSpec = spec{
	serviceType: TypeDIR3KYC,
	required:    parties(models.RoleDirector, 1, identity...),
	drafts:      drafts(artifacts.CategoryForms, models.DraftDIR3KYC),
}

func rocStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(rocNamespace, engine, annualFilingSpec, dir3KYCSpec)
}
