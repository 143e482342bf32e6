package ir

// CallOptions carries per-call settings. Only presence (not value) of TTL,
// Limit and When contributes to a statement shape; their values are read
// at extraction time.
type CallOptions struct {
	TTL               *int              `json:"ttl,omitempty"`
	Limit             *int              `json:"limit,omitempty"`
	When              []PropertyBinding `json:"when,omitempty"`
	DeleteOnlyColumns bool              `json:"delete_only_columns,omitempty"`
}

// HasTTL reports whether a time-to-live was requested.
func (o CallOptions) HasTTL() bool { return o.TTL != nil }

// HasLimit reports whether a result limit was requested.
func (o CallOptions) HasLimit() bool { return o.Limit != nil }

// Int returns a pointer to n, for CallOptions literals.
func Int(n int) *int { return &n }
