package model

// Plan tier constants. Quota enforcement only applies to the free tier.
const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

// FreeUsageLimit is the number of free-tier generations a user may consume.
const FreeUsageLimit = 10

// Identity is the immutable per-request view of the authenticated user.
// It is built once by the auth middleware from the verified token and the
// identity provider's user metadata, and passed by value from there on.
type Identity struct {
	UserID    string
	Plan      string
	FreeUsage int
}

// IsPremium reports whether the user is on the premium plan.
func (id Identity) IsPremium() bool {
	return id.Plan == PlanPremium
}

// Profile is the subset of identity-provider user metadata the quota
// ledger reads and writes.
type Profile struct {
	UserID    string `json:"user_id"`
	Plan      string `json:"plan"`
	FreeUsage int    `json:"free_usage"`
}
