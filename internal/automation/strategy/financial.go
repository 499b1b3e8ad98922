package strategy

import (
	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

const (
	TypeFinancialStatements = "FINANCIAL_STATEMENTS"
	TypeProjectReport       = "PROJECT_REPORT_CMA"

	financialNamespace = "financial-reports"
)

var financialStatementsSpec = spec{
	serviceType: TypeFinancialStatements,
	required:    entity(models.DocBankStatement, models.DocTrialBalance, models.DocCompanyPAN),
	drafts:      drafts(artifacts.CategoryDrafts, models.DraftBalanceSheet, models.DraftProfitAndLoss),
	standard:    drafts(artifacts.CategoryDrafts, models.DraftCashFlow),
}

var projectReportSpec = spec{
	serviceType: TypeProjectReport,
	required:    entity(models.DocBusinessPlan, models.DocProjectCostEstimate, models.DocBankStatement),
	drafts: append(
		drafts(artifacts.CategoryDrafts, models.DraftProjectReport),
		drafts(artifacts.CategoryInternal, models.DraftCMAData)...,
	),
}

func financialStrategies(engine *drafting.Engine) map[string]Strategy {
	return buildAll(financialNamespace, engine, financialStatementsSpec, projectReportSpec)
}
