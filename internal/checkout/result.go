package checkout

import "github.com/fjod/go_cart/storefront/internal/domain"

type Outcome string

const (
	OutcomeRendered    Outcome = "RENDERED"
	OutcomeRedirect    Outcome = "REDIRECT"
	OutcomeNotFound    Outcome = "NOT_FOUND"
	OutcomeUnavailable Outcome = "UNAVAILABLE"
)

// String representation (for logging and metric labels)
func (o Outcome) String() string {
	return string(o)
}

// Result is exactly one of: a rendered summary, a redirect, or a failure outcome.
type Result struct {
	Outcome    Outcome
	Summary    *domain.OrderSummary
	RedirectTo string
	Permanent  bool
	Err        error
}

func rendered(s *domain.OrderSummary) Result {
	return Result{Outcome: OutcomeRendered, Summary: s}
}

func redirectHome() Result {
	return Result{Outcome: OutcomeRedirect, RedirectTo: "/", Permanent: false}
}

func failed(outcome Outcome, err error) Result {
	return Result{Outcome: outcome, Err: err}
}
