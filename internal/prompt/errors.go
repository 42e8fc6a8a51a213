package prompt

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetExceeded means the mandatory content of a prompt does not fit
	// the grammar's budget even with every optional clause dropped.
	ErrBudgetExceeded = errors.New("composition budget exceeded")

	// ErrPrimaryUnavailable marks a panel composed by the fallback path.
	ErrPrimaryUnavailable = errors.New("primary composer unavailable")

	// ErrUnknownGrammar is returned by Lookup for an unregistered name.
	ErrUnknownGrammar = errors.New("unknown grammar")
)

// BudgetError reports the measured size of a prompt that could not fit.
type BudgetError struct {
	Grammar string
	Length  int
	Budget  int
	Unit    Unit
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("%s: mandatory content needs %d %s, budget is %d",
		e.Grammar, e.Length, e.Unit, e.Budget)
}

// Is makes errors.Is(err, ErrBudgetExceeded) hold for a *BudgetError.
func (e *BudgetError) Is(target error) bool {
	return target == ErrBudgetExceeded
}
