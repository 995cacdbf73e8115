package orchestrator

import (
	"fmt"
	"strings"

	"github.com/famomatic/ytx/internal/types"
)

// AllClientsFailedError is returned when the working list drained without
// a single accepted player response. It matches ErrNoPlayerResponse.
type AllClientsFailedError struct {
	Attempts []*types.AttemptError
}

func (e *AllClientsFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no client produced a player response"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.Error())
	}
	return fmt.Sprintf("no client produced a player response: %s", strings.Join(parts, "; "))
}

func (e *AllClientsFailedError) Unwrap() error { return types.ErrNoPlayerResponse }

// PoTokenRequiredError reports a client skipped because its policy demands
// a proof-of-origin token no provider could supply.
type PoTokenRequiredError struct {
	Client string
}

func (e *PoTokenRequiredError) Error() string {
	return fmt.Sprintf("client %s requires a po token and no provider is wired", e.Client)
}
