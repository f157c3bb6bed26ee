package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/labtrack/internal"
	"github.com/frahmantamala/labtrack/internal/transport"
)

// RBACAuthorization enforces role-only policy decisions at the routing layer.
type RBACAuthorization struct {
	*transport.BaseHandler
	policy *Policy
}

func NewRBACAuthorization(policy *Policy, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		policy:      policy,
	}
}

// Require builds a middleware that denies the request unless the policy
// allows op for the authenticated user. Only role-only operations make sense
// here; ownership checks happen in the services.
func (ra *RBACAuthorization) Require(op Operation) func(http.Handler) http.Handler {
	if !ra.policy.IsRoleOnly(op) {
		panic("auth: operation " + string(op) + " needs resource ownership and cannot be checked by route")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				ra.Logger.WarnContext(r.Context(), "authorization check failed: user not found in context")
				ra.WriteAppError(w, internal.ErrMissingToken)
				return
			}

			if err := ra.policy.Authorize(op, user, Resource{}); err != nil {
				ra.Logger.WarnContext(r.Context(), "access denied: insufficient role",
					"user_id", user.ID,
					"role", user.Role,
					"operation", op)
				ra.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
