// Package gate holds the route-authorization decisions of the portal.
// Everything here is pure: it reads a session snapshot or state and a path,
// and returns a Decision. Performing the redirect is the caller's job.
package gate

import (
	"strings"

	"admissions/internal/model"
)

// Class is the authorization category of a path.
type Class int

const (
	// ClassUnclassified paths need authentication but no particular role.
	ClassUnclassified Class = iota
	ClassPublic
	ClassApplicant
	ClassStaff
)

func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassApplicant:
		return "applicant"
	case ClassStaff:
		return "staff"
	default:
		return "unclassified"
	}
}

// Routes is the static route table shared by the edge filter and the guards.
type Routes struct {
	Public    []string
	Applicant []string
	Staff     []string

	Root          string
	Login         string
	ApplicantHome string
	StaffHome     string
}

// DefaultRoutes returns the portal's route table.
func DefaultRoutes() Routes {
	return Routes{
		Public:        []string{"/login", "/register"},
		Applicant:     []string{"/dashboard", "/profile", "/applications", "/payments", "/programs"},
		Staff:         []string{"/admin"},
		Root:          "/",
		Login:         "/login",
		ApplicantHome: "/dashboard",
		StaffHome:     "/admin",
	}
}

// Classify returns the class of path. Prefixes match on segment boundaries.
func (r Routes) Classify(path string) Class {
	switch {
	case matchAny(r.Public, path):
		return ClassPublic
	case matchAny(r.Staff, path):
		return ClassStaff
	case matchAny(r.Applicant, path):
		return ClassApplicant
	default:
		return ClassUnclassified
	}
}

// IsRoot reports whether path is the root page.
func (r Routes) IsRoot(path string) bool {
	return path == r.Root || path == ""
}

// Home is where a signed-in principal lands: applicants on their dashboard,
// everyone else (including an unreadable principal) on the staff root.
func (r Routes) Home(p *model.Principal) string {
	if p.IsApplicant() {
		return r.ApplicantHome
	}
	return r.StaffHome
}

// HasPrefix reports whether path equals prefix or lies below it.
func HasPrefix(path, prefix string) bool {
	if prefix == "" || prefix == "/" {
		return false
	}
	prefix = strings.TrimRight(prefix, "/")
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func matchAny(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if HasPrefix(path, p) {
			return true
		}
	}
	return false
}
