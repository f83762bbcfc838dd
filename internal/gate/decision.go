package gate

import "fmt"

// Outcome is what a gate decided for one navigation.
type Outcome int

const (
	// Allow lets the request through unmodified.
	Allow Outcome = iota
	// Redirect sends the user to Decision.Location.
	Redirect
	// Pending means the session has not finished loading; render a neutral
	// loading indicator and neither the page nor a redirect.
	Pending
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Pending:
		return "pending"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the result of a gate evaluation.
type Decision struct {
	Outcome  Outcome
	Location string
	// Reason is a short machine-readable tag for logs.
	Reason string
}

func allow() Decision { return Decision{Outcome: Allow} }

func pending() Decision { return Decision{Outcome: Pending, Reason: "session_loading"} }

func redirectTo(location, reason string) Decision {
	return Decision{Outcome: Redirect, Location: location, Reason: reason}
}
