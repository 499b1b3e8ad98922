package strategy

import (
	"context"

	"service-automation/internal/automation/artifacts"
	"service-automation/internal/automation/drafting"
	"service-automation/internal/models"
)

// Canonical company registration service types.
const (
	TypePrivateLimited = "PRIVATE_LIMITED_COMPANY"
	TypePublicLimited  = "PUBLIC_LIMITED_COMPANY"
	TypeOPC            = "ONE_PERSON_COMPANY"
	TypeLLP            = "LIMITED_LIABILITY_PARTNERSHIP"
	TypePartnership    = "PARTNERSHIP_FIRM"
	TypeProducer       = "PRODUCER_COMPANY"
	TypeSection8       = "SECTION_8_COMPANY"
	TypeNidhi          = "NIDHI_COMPANY"
	TypeProprietorship = "SOLE_PROPRIETORSHIP"
)

const companyNamespace = drafting.Namespace

var identity = []models.DocumentKind{models.KindPAN, models.KindAadhaar, models.KindPhoto}

var officeProof = entity(models.DocRegisteredOfficeProof, models.DocUtilityBill, models.DocOwnerNOC)

var incorporationForms = drafts(artifacts.CategoryForms,
	models.DraftSpicePlusForm, models.DraftDirectorConsent, models.DraftDirectorDeclaration)

func directorRules(n int) []Rule {
	return DistinctParties(models.KindPAN, models.RoleDirector, n, "Director")
}

var publicLimitedSpec = spec{
	serviceType: TypePublicLimited,
	required: docs(
		parties(models.RoleDirector, 3, identity...),
		parties(models.RoleShareholder, 7, models.KindPAN),
		officeProof,
	),
	rules:    directorRules(3),
	drafts:   append(drafts(artifacts.CategoryDrafts, models.DraftMOA, models.DraftAOA), incorporationForms...),
	standard: drafts(artifacts.CategoryDrafts, models.DraftShareCertificate),
	premium:  drafts(artifacts.CategoryInternal, models.DraftComplianceCalendar),
}

// opcSpec produces exactly five drafts for every plan.
var opcSpec = spec{
	serviceType: TypeOPC,
	required: docs(
		party(models.RoleMember, identity...),
		party(models.RoleNominee, models.KindPAN, models.KindAadhaar),
		entity(models.DocRegisteredOfficeProof, models.DocUtilityBill),
	),
	rules: []Rule{
		DistinctDocuments(
			models.PartyDocument(models.KindPAN, models.RoleMember, 0),
			models.PartyDocument(models.KindPAN, models.RoleNominee, 0),
			"Member and Nominee cannot be the same person",
		),
	},
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftSpicePlusForm),
		append(
			drafts(artifacts.CategoryDrafts, models.DraftMOA, models.DraftAOA),
			drafts(artifacts.CategoryForms, models.DraftNomineeConsent, models.DraftDirectorDeclaration)...,
		)...,
	),
}

var llpSpec = spec{
	serviceType: TypeLLP,
	required: docs(
		parties(models.RoleDesignatedPartner, 2, identity...),
		entity(models.DocRegisteredOfficeProof, models.DocUtilityBill),
	),
	rules:   DistinctParties(models.KindPAN, models.RoleDesignatedPartner, 2, "Designated Partner"),
	drafts:  append(drafts(artifacts.CategoryForms, models.DraftFiLLiPForm), drafts(artifacts.CategoryDrafts, models.DraftLLPAgreement)...),
	premium: drafts(artifacts.CategoryInternal, models.DraftComplianceCalendar),
}

var partnershipSpec = spec{
	serviceType: TypePartnership,
	required: docs(
		parties(models.RolePartner, 2, models.KindPAN, models.KindAadhaar),
		entity(models.DocRegisteredOfficeProof, models.DocRentAgreement),
	),
	rules:  DistinctParties(models.KindPAN, models.RolePartner, 2, "Partner"),
	drafts: append(drafts(artifacts.CategoryDrafts, models.DraftPartnershipDeed), drafts(artifacts.CategoryForms, models.DraftFirmRegistration)...),
}

var producerSpec = spec{
	serviceType: TypeProducer,
	required: docs(
		parties(models.RolePromoter, 5, models.KindPAN, models.KindAadhaar),
		entity(models.DocFarmerMembershipProof),
		officeProof,
	),
	rules: DistinctParties(models.KindPAN, models.RolePromoter, 5, "Promoter"),
	drafts: append(
		drafts(artifacts.CategoryDrafts, models.DraftMOA, models.DraftAOA, models.DraftProducerBylaws),
		drafts(artifacts.CategoryForms, models.DraftSpicePlusForm)...,
	),
}

var section8Spec = spec{
	serviceType: TypeSection8,
	required: docs(
		parties(models.RoleDirector, 2, identity...),
		entity(models.DocObjectsDeclaration),
		officeProof,
	),
	rules: directorRules(2),
	drafts: append(
		drafts(artifacts.CategoryForms, models.DraftLicenseApplication, models.DraftSpicePlusForm),
		drafts(artifacts.CategoryDrafts, models.DraftProjectedIncome, models.DraftMOA, models.DraftAOA)...,
	),
}

var nidhiSpec = spec{
	serviceType: TypeNidhi,
	required: docs(
		parties(models.RoleDirector, 3, identity...),
		parties(models.RoleMember, 7, models.KindPAN),
		entity(models.DocMembershipRegister),
		officeProof,
	),
	rules: directorRules(3),
	drafts: append(
		drafts(artifacts.CategoryDrafts, models.DraftMOA, models.DraftAOA),
		drafts(artifacts.CategoryForms, models.DraftSpicePlusForm, models.DraftNidhiDeclaration)...,
	),
}

var proprietorshipSpec = spec{
	serviceType: TypeProprietorship,
	required: docs(
		party(models.RoleProprietor, identity...),
		entity(models.DocBankStatement, models.DocRegisteredOfficeProof),
	),
	drafts:   append(drafts(artifacts.CategoryDrafts, models.DraftProprietorAffidavit), drafts(artifacts.CategoryForms, models.DraftGSTREG01)...),
	standard: drafts(artifacts.CategoryInternal, models.DraftComplianceCalendar),
}

var privateLimitedSpec = spec{
	serviceType: TypePrivateLimited,
	required: docs(
		parties(models.RoleDirector, 2, identity...),
		parties(models.RoleShareholder, 2, models.KindPAN),
		officeProof,
	),
	rules: directorRules(2),
}

// PrivateLimited is the flagship registration. Validation is a checklist;
// drafting goes through the drafting engine and is plan-dependent.
type PrivateLimited struct {
	*Checklist
	engine *drafting.Engine
}

func NewPrivateLimited(engine *drafting.Engine) *PrivateLimited {
	return &PrivateLimited{
		Checklist: privateLimitedSpec.build(companyNamespace, nil),
		engine:    engine,
	}
}

// DraftNames lists the engine's document set for plan.
func (p *PrivateLimited) DraftNames(plan models.Plan) []models.DraftName {
	return drafting.Documents(plan)
}

// GenerateDrafts renders through the engine. Without one, only the
// deterministic paths are returned.
func (p *PrivateLimited) GenerateDrafts(ctx context.Context, app *models.Application) (map[models.DraftName]string, error) {
	if p.engine != nil {
		return p.engine.GenerateAllDocuments(ctx, app)
	}
	out := make(map[models.DraftName]string)
	for _, doc := range drafting.Documents(app.Plan) {
		out[doc] = drafting.DraftPath(app.SubmissionID, doc)
	}
	return out, nil
}

// Engine exposes the drafting engine for the registration flow.
func (p *PrivateLimited) Engine() *drafting.Engine {
	return p.engine
}

func companyStrategies(engine *drafting.Engine) map[string]Strategy {
	out := map[string]Strategy{TypePrivateLimited: NewPrivateLimited(engine)}
	for _, s := range []spec{
		publicLimitedSpec, opcSpec, llpSpec, partnershipSpec,
		producerSpec, section8Spec, nidhiSpec, proprietorshipSpec,
	} {
		out[s.serviceType] = s.build(companyNamespace, engine)
	}
	return out
}
