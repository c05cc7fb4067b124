/*
Package advisor answers regulatory questions about leave and overtime.

PURPOSE:
  Wraps a language model behind a fixed persona: the system instruction
  carries the regulation extract and the user's current balances, so the
  model answers about this user's position and nothing else.

FAILURE MODES:
  - No model configured (no API key): ErrUnavailable
  - Blank question: *generic.InvalidInputError
  - Model error or timeout: wrapped error, the ledger is never touched
  - Empty model answer: EmptyAnswer is returned as the reply

SEE ALSO:
  - prompt.go: The system instruction
  - gemini.go: The Gemini Completer
*/
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marinalog/ledger/generic"
	"github.com/marinalog/ledger/leave"
)

// EmptyAnswer replaces a blank model reply.
const EmptyAnswer = "Il modello ha generato una risposta vuota."

const DefaultTimeout = 30 * time.Second

var ErrUnavailable = errors.New("advisor: no model configured")

type Advisor struct {
	completer Completer
	timeout   time.Duration
}

// New returns an advisor. A nil completer yields an advisor that always
// reports ErrUnavailable; timeout <= 0 means DefaultTimeout.
func New(c Completer, timeout time.Duration) *Advisor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Advisor{completer: c, timeout: timeout}
}

func (a *Advisor) Available() bool {
	return a != nil && a.completer != nil
}

// Ask sends query under the persona built from user and balances.
func (a *Advisor) Ask(ctx context.Context, query string, user leave.User, balances generic.Balances) (string, error) {
	if !a.Available() {
		return "", ErrUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return "", &generic.InvalidInputError{Field: "query", Reason: "required"}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	answer, err := a.completer.Complete(ctx, SystemInstruction(user, balances), query)
	if err != nil {
		return "", fmt.Errorf("advisor: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return EmptyAnswer, nil
	}
	return answer, nil
}
