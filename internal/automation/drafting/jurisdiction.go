package drafting

import "strings"

// DefaultJurisdiction is used when no keyword matches the address.
const DefaultJurisdiction = "India"

// jurisdictions is scanned in order; the first keyword found in the
// uppercased address wins. Cities precede states so "Navi Mumbai,
// Maharashtra" and "Mumbai" agree.
var jurisdictions = []struct {
	keyword string
	name    string
}{
	{"NEW DELHI", "Delhi"},
	{"DELHI", "Delhi"},
	{"NOIDA", "Uttar Pradesh"},
	{"GURUGRAM", "Haryana"},
	{"GURGAON", "Haryana"},
	{"MUMBAI", "Maharashtra"},
	{"PUNE", "Maharashtra"},
	{"BENGALURU", "Karnataka"},
	{"BANGALORE", "Karnataka"},
	{"CHENNAI", "Tamil Nadu"},
	{"HYDERABAD", "Telangana"},
	{"KOLKATA", "West Bengal"},
	{"AHMEDABAD", "Gujarat"},
	{"JAIPUR", "Rajasthan"},
	{"KOCHI", "Kerala"},
	{"MAHARASHTRA", "Maharashtra"},
	{"KARNATAKA", "Karnataka"},
	{"TAMIL NADU", "Tamil Nadu"},
	{"TELANGANA", "Telangana"},
	{"WEST BENGAL", "West Bengal"},
	{"GUJARAT", "Gujarat"},
	{"RAJASTHAN", "Rajasthan"},
	{"KERALA", "Kerala"},
	{"UTTAR PRADESH", "Uttar Pradesh"},
	{"HARYANA", "Haryana"},
}

// Jurisdiction derives the registrar jurisdiction from a free-form address.
func Jurisdiction(address string) string {
	upper := strings.ToUpper(address)
	for _, j := range jurisdictions {
		if strings.Contains(upper, j.keyword) {
			return j.name
		}
	}
	return DefaultJurisdiction
}
