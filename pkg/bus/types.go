package bus

import "context"

// Envelope wraps every payload carried on a channel. A non-empty Error
// means the correlated request must fail; Data may legitimately be nil.
type Envelope struct {
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// Failed reports whether the envelope carries a provider-reported error.
func (e Envelope) Failed() bool {
	return e.Error != ""
}

// Handler consumes one envelope published on a channel name. Handlers run
// inline on the publisher's goroutine; long work belongs in a goroutine.
type Handler func(context.Context, Envelope)
