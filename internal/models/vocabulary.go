// internal/models/vocabulary.go
package models

import "fmt"

// DocumentType tags an uploaded source document. The set is closed: every
// tag a strategy asks for is either a constant below or built with
// PartyDocument.
type DocumentType string

// DocumentKind is the identity/proof document family used for party documents.
type DocumentKind string

// PartyRole is the capacity in which a person appears on an application.
type PartyRole string

const (
	KindPAN          DocumentKind = "PAN_CARD"
	KindAadhaar      DocumentKind = "AADHAAR_CARD"
	KindPhoto        DocumentKind = "PHOTO"
	KindAddressProof DocumentKind = "ADDRESS_PROOF"
)

const (
	RoleDirector          PartyRole = "DIRECTOR"
	RoleShareholder       PartyRole = "SHAREHOLDER"
	RolePartner           PartyRole = "PARTNER"
	RoleDesignatedPartner PartyRole = "DESIGNATED_PARTNER"
	RolePromoter          PartyRole = "PROMOTER"
	RoleMember            PartyRole = "MEMBER"
	RoleNominee           PartyRole = "NOMINEE"
	RoleProprietor        PartyRole = "PROPRIETOR"
	RoleApplicant         PartyRole = "APPLICANT"
)

// PartyDocument builds the tag for a person-bound document. Index 0 is
// used for single-occupant roles and produces no numeric suffix, so
// PartyDocument(KindPAN, RoleMember, 0) == "PAN_CARD_MEMBER".
func PartyDocument(kind DocumentKind, role PartyRole, index int) DocumentType {
	if index <= 0 {
		return DocumentType(fmt.Sprintf("%s_%s", kind, role))
	}
	return DocumentType(fmt.Sprintf("%s_%s_%d", kind, role, index))
}

// Entity-level documents.
const (
	DocRegisteredOfficeProof DocumentType = "REGISTERED_OFFICE_PROOF"
	DocUtilityBill           DocumentType = "UTILITY_BILL"
	DocOwnerNOC              DocumentType = "OWNER_NOC"
	DocRentAgreement         DocumentType = "RENT_AGREEMENT"
	DocCompanyPAN            DocumentType = "COMPANY_PAN"
	DocIncorporationCert     DocumentType = "CERTIFICATE_OF_INCORPORATION"
	DocPartnershipDeed       DocumentType = "PARTNERSHIP_DEED"
	DocBankStatement         DocumentType = "BANK_STATEMENT"
	DocCancelledCheque       DocumentType = "CANCELLED_CHEQUE"
	DocTrialBalance          DocumentType = "TRIAL_BALANCE"
	DocAuditReport           DocumentType = "AUDIT_REPORT"
	DocFinancialStatements   DocumentType = "FINANCIAL_STATEMENTS"
	DocShareholdingPattern   DocumentType = "SHAREHOLDING_PATTERN"
	DocProjectCostEstimate   DocumentType = "PROJECT_COST_ESTIMATE"
	DocBusinessPlan          DocumentType = "BUSINESS_PLAN"
	DocBrandLogo             DocumentType = "BRAND_LOGO"
	DocUserAffidavit         DocumentType = "USER_AFFIDAVIT"
	DocPowerOfAttorney       DocumentType = "POWER_OF_ATTORNEY"
	DocWorkSample            DocumentType = "WORK_SAMPLE"
	DocAuthorNOC             DocumentType = "AUTHOR_NOC"
	DocInventionDisclosure   DocumentType = "INVENTION_DISCLOSURE"
	DocTechnicalDrawings     DocumentType = "TECHNICAL_DRAWINGS"
	DocFoodSafetyPlan        DocumentType = "FOOD_SAFETY_PLAN"
	DocPremisesLayout        DocumentType = "PREMISES_LAYOUT"
	DocQualityManual         DocumentType = "QUALITY_MANUAL"
	DocPitchDeck             DocumentType = "PITCH_DECK"
	DocForm16                DocumentType = "FORM_16"
	DocInvestmentProofs      DocumentType = "INVESTMENT_PROOFS"
	DocTDSChallans           DocumentType = "TDS_CHALLANS"
	DocDeducteeDetails       DocumentType = "DEDUCTEE_DETAILS"
	DocSalesRegister         DocumentType = "SALES_REGISTER"
	DocMembershipRegister    DocumentType = "MEMBERSHIP_REGISTER"
	DocObjectsDeclaration    DocumentType = "OBJECTS_DECLARATION"
	DocFarmerMembershipProof DocumentType = "FARMER_MEMBERSHIP_PROOF"
)

// DraftName keys Application.GeneratedDrafts.
type DraftName string

// Company registration drafts.
const (
	DraftMOA                 DraftName = "MOA"
	DraftAOA                 DraftName = "AOA"
	DraftNameReservation     DraftName = "NAME_RESERVATION"
	DraftShareCertificate    DraftName = "SHARE_CERTIFICATE"
	DraftGSTRegistrationForm DraftName = "GST_REGISTRATION_FORM"
	DraftBoardResolution     DraftName = "BOARD_RESOLUTION"
	DraftSpicePlusForm       DraftName = "SPICE_PLUS_FORM"
	DraftNomineeConsent      DraftName = "NOMINEE_CONSENT_INC3"
	DraftDirectorDeclaration DraftName = "DIRECTOR_DECLARATION_INC9"
	DraftDirectorConsent     DraftName = "DIRECTOR_CONSENT_DIR2"
	DraftLLPAgreement        DraftName = "LLP_AGREEMENT"
	DraftFiLLiPForm          DraftName = "FILLIP_FORM"
	DraftPartnershipDeed     DraftName = "PARTNERSHIP_DEED"
	DraftFirmRegistration    DraftName = "FIRM_REGISTRATION_FORM"
	DraftLicenseApplication  DraftName = "SECTION8_LICENSE_APPLICATION"
	DraftProjectedIncome     DraftName = "PROJECTED_INCOME_EXPENDITURE"
	DraftNidhiDeclaration    DraftName = "NIDHI_DECLARATION_NDH4"
	DraftProducerBylaws      DraftName = "PRODUCER_MEMBERSHIP_BYLAWS"
	DraftProprietorAffidavit DraftName = "PROPRIETOR_AFFIDAVIT"
	DraftComplianceCalendar  DraftName = "COMPLIANCE_CALENDAR"
)

// Certification, license, IP, financial, ROC and tax drafts.
const (
	DraftUdyamApplication     DraftName = "UDYAM_APPLICATION"
	DraftISOApplication       DraftName = "ISO_APPLICATION"
	DraftGapAnalysis          DraftName = "GAP_ANALYSIS_REPORT"
	DraftDPIITApplication     DraftName = "DPIIT_APPLICATION"
	DraftInnovationWriteup    DraftName = "INNOVATION_WRITEUP"
	DraftFSSAIForm            DraftName = "FSSAI_FORM_B"
	DraftTradeLicenseForm     DraftName = "TRADE_LICENSE_APPLICATION"
	DraftIECForm              DraftName = "IEC_APPLICATION"
	DraftTrademarkTM1         DraftName = "TRADEMARK_TM_A"
	DraftTrademarkSearch      DraftName = "TRADEMARK_SEARCH_REPORT"
	DraftCopyrightForm        DraftName = "COPYRIGHT_FORM_XIV"
	DraftPatentForm1          DraftName = "PATENT_FORM_1"
	DraftPatentSpecification  DraftName = "PATENT_SPECIFICATION"
	DraftBalanceSheet         DraftName = "BALANCE_SHEET"
	DraftProfitAndLoss        DraftName = "PROFIT_AND_LOSS"
	DraftCashFlow             DraftName = "CASH_FLOW_STATEMENT"
	DraftProjectReport        DraftName = "PROJECT_REPORT"
	DraftCMAData              DraftName = "CMA_DATA"
	DraftAOC4                 DraftName = "AOC_4"
	DraftMGT7                 DraftName = "MGT_7"
	DraftDirectorsReport      DraftName = "DIRECTORS_REPORT"
	DraftDIR3KYC              DraftName = "DIR_3_KYC"
	DraftGSTREG01             DraftName = "GST_REG_01"
	DraftITRComputation       DraftName = "ITR_COMPUTATION"
	DraftITRForm              DraftName = "ITR_FORM"
	DraftTDSReturn            DraftName = "TDS_RETURN_26Q"
	DraftTDSCertificates      DraftName = "TDS_CERTIFICATES_16A"
	DraftTaxPlanningSummary   DraftName = "TAX_PLANNING_SUMMARY"
	DraftRenewalReminder      DraftName = "RENEWAL_SCHEDULE"
	DraftTrademarkClassReport DraftName = "TRADEMARK_CLASS_REPORT"
)

// Plan is the purchased service tier.
type Plan string

const (
	PlanBasic    Plan = "BASIC"
	PlanStandard Plan = "STANDARD"
	PlanPremium  Plan = "PREMIUM"
)

// Normalized returns the plan with an empty value treated as BASIC.
func (p Plan) Normalized() Plan {
	switch p {
	case PlanStandard, PlanPremium:
		return p
	default:
		return PlanBasic
	}
}

// JobStatus is the lifecycle status of an automation job.
type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobInProgress JobStatus = "IN_PROGRESS"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
)

// Stage tags the step a job is executing or last executed.
type Stage string

const (
	StageInitiated    Stage = "INITIATED"
	StageVerification Stage = "VERIFICATION"
	StageDrafting     Stage = "DRAFTING"
	StagePackaging    Stage = "PACKAGING"
	StageCompleted    Stage = "COMPLETED"

	// registration flow
	StageDocumentVerification Stage = "DOCUMENT_VERIFICATION"
	StageDocumentGeneration   Stage = "DOCUMENT_GENERATION"
	StageQualityCheck         Stage = "QUALITY_CHECK"
)

// Application status labels. These are free-form progress markers shown
// to people and are deliberately not tied to JobStatus.
const (
	StatusAutomationInProgress = "AUTOMATION_IN_PROGRESS"
	StatusReadyForFiling       = "READY_FOR_FILING"
	StatusDocumentsVerified    = "DOCUMENTS_VERIFIED"
	StatusDocumentsRejected    = "DOCUMENTS_REJECTED"
	StatusDocsGenerated        = "DOCS_GENERATED"
	StatusReadyForPortal       = "READY_FOR_PORTAL"
	StatusQAFailed             = "QA_FAILED"
)

// LogLevel is the severity of a job log entry.
type LogLevel string

const (
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)
