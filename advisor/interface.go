package advisor

import "context"

// Completer sends one question to a language model under a system
// instruction and returns the model's text.
//
//go:generate mockgen -destination=mocks/mock_completer.go -source=interface.go Completer
type Completer interface {
	Complete(ctx context.Context, systemInstruction, query string) (string, error)
}
