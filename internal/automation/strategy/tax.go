package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeGST       = "GST_REGISTRATION"
	TypeIncomeTax = "INCOME_TAX_RETURN"
	TypeTDS       = "TDS_RETURN"

	taxNamespace = "tax-filings"
)

var gstSpec = spec{
	serviceType: TypeGST,
	required: docs(
		party(models.RoleApplicant, identity...),
		entity(models.DocRegisteredOfficeProof, models.DocBankStatement),
	),
	drafts: drafts(artifacts.CategoryForms, models.DraftGSTREG01),
}

var incomeTaxSpec = spec{
	serviceType: TypeIncomeTax,
	required: docs(
		party(models.RoleApplicant, models.KindPAN),
		entity(models.DocForm16, models.DocBankStatement, models.DocInvestmentProofs),
	),
	drafts: append(
		drafts(artifacts.CategoryInternal, models.DraftITRComputation),
		drafts(artifacts.CategoryForms, models.DraftITRForm)...,
	),
	premium: drafts(artifacts.CategoryDrafts, models.DraftTaxPlanningSummary),
}

var tdsSpec = spec{
	serviceType: TypeTDS,
	required:    entity(models.DocCompanyPAN, models.DocTDSChallans, models.DocDeducteeDetails),
	drafts:      drafts(artifacts.CategoryForms, models.DraftTDSReturn, models.DraftTDSCertificates),
}

func taxStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(taxNamespace, engine, gstSpec, incomeTaxSpec, tdsSpec)
}
