package chat

import (
	"context"
	"errors"

	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/provider"
)

var (
	// ErrInterrupted means the user interrupted the chat.
	ErrInterrupted = errors.New("chat interrupted by user")

	// ErrProbeFailed means a connection opened but did not answer the
	// liveness probe.
	ErrProbeFailed = errors.New("liveness probe failed")
)

// Reason tells why a chat run ended.
type Reason string

const (
	ReasonExit          Reason = "exit"
	ReasonInterrupted   Reason = "interrupted"
	ReasonConfiguration Reason = "configuration"
	ReasonConnection    Reason = "connection"
	ReasonReconnect     Reason = "reconnect"
	ReasonFailure       Reason = "failure"
)

// Outcome is the result of Controller.Run.
type Outcome struct {
	Reason Reason
	Err    error
}

// ExitCode maps the outcome to a process exit status.
func (o Outcome) ExitCode() int {
	switch o.Reason {
	case ReasonExit:
		return 0
	case ReasonConfiguration:
		return 2
	case ReasonConnection, ReasonReconnect:
		return 3
	case ReasonInterrupted:
		return 130
	default:
		return 1
	}
}

// classify maps a startup error to the reason it ends the run.
func classify(ctx context.Context, err error) Reason {
	switch {
	case ctx.Err() != nil || errors.Is(err, ErrInterrupted):
		return ReasonInterrupted
	case config.IsConfigError(err), errors.Is(err, provider.ErrUnknownProvider):
		return ReasonConfiguration
	default:
		return ReasonFailure
	}
}
