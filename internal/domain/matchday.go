package domain

// NotSpecified substitutes any reference name that cannot be resolved.
const NotSpecified = "No especificado"

// Matchday is a scheduled fixture. At most one should be flagged active;
// nothing enforces that, readers take the first active record.
type Matchday struct {
	ID       string `json:"id" firestore:"-" yaml:"id"`
	Number   int    `json:"number" firestore:"number" yaml:"number"`
	HomeTeam string `json:"homeTeam" firestore:"homeTeam" yaml:"home_team"`
	AwayTeam string `json:"awayTeam" firestore:"awayTeam" yaml:"away_team"`
	Venue    string `json:"venue" firestore:"venue" yaml:"venue"`
	Date     string `json:"date" firestore:"date" yaml:"date"` // YYYY-MM-DD
	Time     string `json:"time" firestore:"time" yaml:"time"` // HH:MM
	Active   bool   `json:"active" firestore:"active" yaml:"active"`
}

type ReferenceKind string

const (
	ReferenceArea     ReferenceKind = "area"
	ReferenceFunction ReferenceKind = "function"
	ReferenceCompany  ReferenceKind = "company"
)

// Reference is an area, function or company looked up by id.
type Reference struct {
	ID   string `json:"id" firestore:"-" yaml:"id"`
	Name string `json:"name" firestore:"name" yaml:"name"`
}

// ReferenceNames are the display names resolved for one request.
type ReferenceNames struct {
	Area     string
	Function string
	Company  string
}

// NamesOrFallback replaces blank names with NotSpecified.
func (n ReferenceNames) NamesOrFallback() ReferenceNames {
	if n.Area == "" {
		n.Area = NotSpecified
	}
	if n.Function == "" {
		n.Function = NotSpecified
	}
	if n.Company == "" {
		n.Company = NotSpecified
	}
	return n
}
