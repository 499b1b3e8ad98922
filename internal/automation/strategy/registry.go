package strategy

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"service-automation/internal/automation/drafting"
	"service-automation/internal/common/errors"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	disallowed = regexp.MustCompile(`[^A-Z0-9_]`)
)

// Normalize uppercases a service type, turns whitespace runs into "_" and
// drops everything outside [A-Z0-9_].
func Normalize(serviceType string) string {
	s := strings.ToUpper(strings.TrimSpace(serviceType))
	s = whitespace.ReplaceAllString(s, "_")
	return disallowed.ReplaceAllString(s, "")
}

type rule struct {
	token    string
	strategy Strategy
}

// Registry resolves a service type by substring match over an ordered
// token list. The first matching token wins, so order is the tie-break.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a rule. token is normalized before it is stored. A token
// that normalizes to "" is refused, since it would match every input.
func (r *Registry) Register(token string, s Strategy) error {
	normalized := Normalize(token)
	if normalized == "" {
		return errors.NewInvalidInputError(fmt.Sprintf("service type token %q is empty after normalization", token))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{token: normalized, strategy: s})
	return nil
}

// Resolve returns the strategy for serviceType or a NO_STRATEGY_FOUND error
// carrying the raw input.
func (r *Registry) Resolve(serviceType string) (Strategy, error) {
	normalized := Normalize(serviceType)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if normalized != "" {
		for _, rl := range r.rules {
			if strings.Contains(normalized, rl.token) {
				return rl.strategy, nil
			}
		}
	}
	return nil, errors.NewNoStrategyFoundError(serviceType)
}

// Strategies returns each registered strategy once, in first-rule order.
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[Strategy]bool)
	var out []Strategy
	for _, rl := range r.rules {
		if !seen[rl.strategy] {
			seen[rl.strategy] = true
			out = append(out, rl.strategy)
		}
	}
	return out
}

// NewDefaultRegistry wires every built-in strategy. engine may be nil, in
// which case drafts are returned as paths without being rendered.
func NewDefaultRegistry(engine *drafting.Engine) *Registry {
	all := make(map[string]Strategy)
	for _, family := range []map[string]Strategy{
		rocStrategies(engine),
		taxStrategies(engine),
		ipStrategies(engine),
		licenseStrategies(engine),
		certificationStrategies(engine),
		financialStrategies(engine),
		companyStrategies(engine),
	} {
		for k, v := range family {
			all[k] = v
		}
	}

	r := NewRegistry()
	for _, rl := range defaultRules {
		if err := r.Register(rl.token, all[rl.serviceType]); err != nil {
			panic(err)
		}
	}
	return r
}

// defaultRules orders families ROC, tax, IP, licenses, certifications,
// financial, then company types. Within company types the more specific
// names precede PARTNERSHIP and PRIVATE_LIMITED.
var defaultRules = []struct {
	token       string
	serviceType string
}{
	// ROC filings
	{"DIR3", TypeDIR3KYC},
	{"DIR_3", TypeDIR3KYC},
	{"ROC", TypeAnnualFiling},
	{"ANNUAL_FILING", TypeAnnualFiling},
	{"MGT7", TypeAnnualFiling},
	{"MGT_7", TypeAnnualFiling},
	{"AOC4", TypeAnnualFiling},
	{"AOC_4", TypeAnnualFiling},

	// Tax filings
	{"GST", TypeGST},
	{"INCOME_TAX", TypeIncomeTax},
	{"ITR", TypeIncomeTax},
	{"TDS", TypeTDS},

	// IP filings
	{"TRADEMARK", TypeTrademark},
	{"COPYRIGHT", TypeCopyright},
	{"PATENT", TypePatent},

	// Licenses
	{"FSSAI", TypeFSSAI},
	{"TRADE_LICENSE", TypeTradeLicense},
	{"IMPORT_EXPORT", TypeIEC},
	{"IEC", TypeIEC},

	// Certifications
	{"MSME", TypeMSME},
	{"UDYAM", TypeMSME},
	{"ISO", TypeISO},
	{"STARTUP_INDIA", TypeStartupIndia},

	// Financial reports
	{"FINANCIAL_STATEMENT", TypeFinancialStatements},
	{"BALANCE_SHEET", TypeFinancialStatements},
	{"PROJECT_REPORT", TypeProjectReport},
	{"CMA", TypeProjectReport},

	// Company registrations
	{"OPC", TypeOPC},
	{"ONE_PERSON", TypeOPC},
	{"PRODUCER", TypeProducer},
	{"SECTION_8", TypeSection8},
	{"SECTION8", TypeSection8},
	{"NIDHI", TypeNidhi},
	{"PUBLIC_LIMITED", TypePublicLimited},
	{"LLP", TypeLLP},
	{"LIMITED_LIABILITY", TypeLLP},
	{"PARTNERSHIP", TypePartnership},
	{"PROPRIETOR", TypeProprietorship},
	{"PRIVATE_LIMITED", TypePrivateLimited},
	{"PVT_LTD", TypePrivateLimited},
}

func buildAll(namespace string, engine *drafting.Engine, specs ...spec) map[string]Strategy {
	out := make(map[string]Strategy, len(specs))
	for _, s := range specs {
		out[s.serviceType] = s.build(namespace, engine)
	}
	return out
}
