package component

// CachePolicy controls whether a node's result may be built once and reused.
type CachePolicy int

const (
	// NoPreference defers to the type-level default: a type registered as
	// shareable is treated as Memoize unless a binding overrides it.
	NoPreference CachePolicy = iota

	// Memoize marks the node as eligible for one-time construction; all
	// consumers observe the same instance.
	Memoize

	// NewInstance forces a fresh value on every request. Results are never
	// cached and the node is never pre-built at engine build time.
	NewInstance
)

var policyNames = map[CachePolicy]string{
	NoPreference: "no-preference",
	Memoize:      "memoize",
	NewInstance:  "new-instance",
}

// String returns a short lowercase name for the policy.
func (p CachePolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return "unknown"
}
