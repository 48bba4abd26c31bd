package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/authz"
)

// authorize asks the policy engine whether the caller may perform op on
// resource and writes the error response if not.
func authorize(w http.ResponseWriter, r *http.Request, policy *authz.Engine, op authz.Operation, resource any) bool {
	err := policy.Authorize(GetIdentity(r.Context()), op, resource)
	if err == nil {
		return true
	}
	slog.Warn("access denied", "user", username(r.Context()), "operation", op.String(), "path", r.URL.Path)
	writeError(w, err, "authorization failed")
	return false
}

// allowed is authorize without a response, for filtering lists.
func allowed(r *http.Request, policy *authz.Engine, op authz.Operation, resource any) bool {
	return policy.Authorize(GetIdentity(r.Context()), op, resource) == nil
}
