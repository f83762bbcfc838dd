package gate

import "admissions/internal/model"

// Edge decides a navigation using only the snapshot carried by the request.
// Rules are evaluated in order and the first match wins:
//
//  1. no token, non-public, non-root path: redirect to login
//  2. token on a public path: redirect to the principal's home
//  3. token and principal: staff path with applicant role goes to the applicant
//     home; applicant path with any other role goes to the staff home
//  4. allow
//
// A snapshot whose principal failed to decode has a nil Principal; role rules
// then do not fire, while the token rules still do.
func Edge(routes Routes, snap model.Snapshot, path string) Decision {
	class := routes.Classify(path)
	authenticated := snap.Authenticated()

	if !authenticated {
		if class != ClassPublic && !routes.IsRoot(path) {
			return redirectTo(routes.Login, "unauthenticated")
		}
		return allow()
	}

	if class == ClassPublic {
		return redirectTo(routes.Home(snap.Principal), "authenticated_on_public")
	}

	if p := snap.Principal; p != nil {
		switch {
		case class == ClassStaff && p.IsApplicant():
			return redirectTo(routes.ApplicantHome, "applicant_on_staff")
		case class == ClassApplicant && !p.IsApplicant():
			return redirectTo(routes.StaffHome, "staff_on_applicant")
		}
	}

	return allow()
}
