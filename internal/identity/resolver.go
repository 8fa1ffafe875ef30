package identity

import "context"

// Identity is what a verified credential resolves to. Role is opaque to the
// chat core; only the HTTP layer and future admin surfaces interpret it.
type Identity struct {
	UserID string
	Role   string
}

// Resolver turns an opaque bearer credential into an Identity. The chat core
// trusts its output and never decodes credentials itself; implementations
// must verify cryptographically before trusting any claim.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (Identity, error)
}
