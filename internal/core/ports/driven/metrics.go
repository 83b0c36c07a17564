package driven

// Login flows
const (
	FlowPassword  = "password"
	FlowEmailOnly = "email_only"
)

// Outcomes recorded for logins and lookups
const (
	OutcomeExchangeRejected = "exchange_rejected"
	OutcomeProfileRejected  = "profile_rejected"
	OutcomeAuthenticated    = "authenticated"
	OutcomeFound            = "found"
	OutcomeAbsent           = "absent"
	OutcomeError            = "error"
)

// Lookup kinds
const (
	LookupByID    = "by_id"
	LookupByToken = "by_token"
)

// AuthMetrics records authentication outcomes
type AuthMetrics interface {
	LoginAttempt(flow, outcome string)
	Lookup(kind, outcome string)
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) LoginAttempt(flow, outcome string) {}
func (NopMetrics) Lookup(kind, outcome string)       {}
