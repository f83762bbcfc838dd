package gate

import (
	"slices"

	"admissions/internal/model"
)

// RequireAuth is the authentication guard: wait for the session to load, then
// redirect to login unless a token is present.
func RequireAuth(routes Routes, state model.SessionState) Decision {
	if state.Loading {
		return pending()
	}
	if !state.Authenticated {
		return redirectTo(routes.Login, "unauthenticated")
	}
	return allow()
}

// RequireRole is the role guard. An empty fallback means the applicant home.
func RequireRole(routes Routes, state model.SessionState, allowed []model.RoleName, fallback string) Decision {
	if state.Loading {
		return pending()
	}
	if fallback == "" {
		fallback = routes.ApplicantHome
	}
	p := state.Principal
	if p == nil || !slices.Contains(allowed, p.Role.Name) {
		return redirectTo(fallback, "role_not_allowed")
	}
	return allow()
}

// Root decides the root page once the session has loaded: signed-in users go
// home, everyone else to login.
func Root(routes Routes, state model.SessionState) Decision {
	if state.Loading {
		return pending()
	}
	if !state.Authenticated {
		return redirectTo(routes.Login, "unauthenticated")
	}
	return redirectTo(routes.Home(state.Principal), "root")
}
