package schema

import (
	"slices"

	"github.com/go-openapi/inflect"
)

// Naming derives default storage names from Go names. It is consulted only
// when a declaration leaves a name empty.
type Naming struct {
	Table  func(typeName string) string
	Column func(fieldName string) string
}

// Predefined naming strategies.
var (
	// IdentityNaming keeps Go names as they are. This is the default.
	IdentityNaming = Naming{
		Table:  identity,
		Column: identity,
	}

	// SnakeNaming converts names to snake_case: CreatedAt => created_at,
	// TenantID => tenant_id.
	SnakeNaming = Naming{
		Table:  rules.Underscore,
		Column: rules.Underscore,
	}

	// PluralSnakeNaming is SnakeNaming with pluralized table names: User => users.
	PluralSnakeNaming = Naming{
		Table:  func(s string) string { return rules.Pluralize(rules.Underscore(s)) },
		Column: rules.Underscore,
	}
)

var rules = ruleset()

// ruleset returns the inflection rules with the common Go initialisms
// registered as acronyms, longest first so that UUID is not split by ID.
func ruleset() *inflect.Ruleset {
	r := inflect.NewDefaultRuleset()
	acronyms := []string{
		"ACL", "API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP",
		"HTTPS", "ID", "IP", "JSON", "QPS", "RAM", "RPC", "SKU", "SQL", "SSH",
		"TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UUID", "XML",
	}
	slices.SortStableFunc(acronyms, func(a, b string) int { return len(b) - len(a) })
	for _, a := range acronyms {
		r.AddAcronym(a)
	}
	return r
}

func identity(s string) string { return s }

func (n Naming) table(s string) string {
	if n.Table == nil {
		return s
	}
	return n.Table(s)
}

func (n Naming) column(s string) string {
	if n.Column == nil {
		return s
	}
	return n.Column(s)
}
