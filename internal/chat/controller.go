package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mcpchat/mcpchat/internal/agent"
	"github.com/mcpchat/mcpchat/internal/config"
	"github.com/mcpchat/mcpchat/internal/event"
	"github.com/mcpchat/mcpchat/internal/logging"
	"github.com/mcpchat/mcpchat/internal/mcp"
	"github.com/mcpchat/mcpchat/internal/provider"
)

const (
	// DefaultConnectAttempts is the startup connection budget.
	DefaultConnectAttempts = 3

	// DefaultRetryDelay is the fixed wait between startup attempts.
	DefaultRetryDelay = 2 * time.Second

	// SmokeTestPrompt is sent once after startup when the smoke test is on.
	SmokeTestPrompt = "Reply with the single word: ready"

	bannerMessage      = "Chat initialized successfully. Type 'exit' to quit."
	interruptedMessage = "Chat interrupted by user"
	reconnectedMessage = "Reconnected successfully. Please send your message again."
	restartMessage     = "Could not reconnect to the tool servers. Please restart the chat."
)

// exitWords end the chat. Matching ignores case and surrounding spaces.
var exitWords = map[string]bool{
	"exit": true,
	"quit": true,
	"bye":  true,
}

// IsExitWord reports whether input asks to end the chat.
func IsExitWord(input string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(input))]
}

// Dependencies are the collaborators of a Controller.
type Dependencies struct {
	// LoadCredential reads the model provider credential.
	LoadCredential func() (config.Credential, error)
	// LoadConfig reads the configuration file.
	LoadConfig func() (*config.Config, error)
	// Connect opens every given tool server, all or nothing.
	Connect func(ctx context.Context, servers map[string]mcp.Config) (Connection, error)
	// NewBackend configures the model backend for a new session.
	NewBackend func(ctx context.Context, cred config.Credential) (provider.Backend, error)
	// NewAgent builds the agent of a new session. Defaults to agent.New.
	NewAgent func(backend provider.Backend, conn Connection, sessionID string) Runner

	Console Console

	// Bus receives lifecycle events when set.
	Bus *event.Bus
	// Timer drives the startup backoff. Nil uses a real timer.
	Timer backoff.Timer
}

// Options tune a Controller.
type Options struct {
	// Memory selects what a reconnect does with the conversation.
	Memory config.MemoryPolicy
	// SmokeTest sends SmokeTestPrompt once after startup.
	SmokeTest bool

	ConnectAttempts int
	RetryDelay      time.Duration
}

// Controller drives one chat run: startup validation, connection with
// retry, the read-eval-print loop, and recovery after a failed turn.
type Controller struct {
	deps Dependencies
	opts Options
	log  zerolog.Logger

	mu    sync.Mutex
	state State

	cred    config.Credential
	cfg     *config.Config
	session *Session
}

// New creates a controller.
func New(deps Dependencies, opts Options) *Controller {
	if opts.ConnectAttempts <= 0 {
		opts.ConnectAttempts = DefaultConnectAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Memory == "" {
		opts.Memory = config.MemoryDiscard
	}
	if deps.NewAgent == nil {
		bus := deps.Bus
		deps.NewAgent = func(backend provider.Backend, conn Connection, sessionID string) Runner {
			return agent.New(backend, conn, agent.Options{Bus: bus, SessionID: sessionID})
		}
	}
	return &Controller{
		deps:  deps,
		opts:  opts,
		log:   logging.For("chat"),
		state: StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the live session, or nil.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *Controller) setState(to State) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	if from == to {
		return
	}
	c.log.Debug().Str("from", from.String()).Str("to", to.String()).Msg("state changed")
	c.publish(event.StateChanged, event.StateChangedData{From: from.String(), To: to.String()})
}

func (c *Controller) publish(t event.EventType, data any) {
	if c.deps.Bus != nil {
		c.deps.Bus.PublishSync(event.Event{Type: t, Data: data})
	}
}

// Run executes the chat until the user leaves, the run is interrupted, or a
// failure cannot be recovered. The live connection is released on every
// path.
func (c *Controller) Run(ctx context.Context) Outcome {
	out := c.run(ctx)

	c.closeSession(string(out.Reason))
	c.setState(StateTerminated)

	if out.Reason == ReasonInterrupted {
		c.deps.Console.Notice(interruptedMessage)
	}
	c.log.Info().Str("reason", string(out.Reason)).AnErr("error", out.Err).Msg("chat finished")
	return out
}

func (c *Controller) run(ctx context.Context) Outcome {
	if err := c.validate(); err != nil {
		c.deps.Console.Error(err)
		return Outcome{Reason: ReasonConfiguration, Err: err}
	}

	c.setState(StateConnecting)
	conn, err := c.connect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{Reason: ReasonInterrupted, Err: ErrInterrupted}
		}
		c.deps.Console.Error(err)
		return Outcome{Reason: ReasonConnection, Err: err}
	}

	if err := c.startSession(ctx, conn, agent.NewConversation()); err != nil {
		c.deps.Console.Error(err)
		return Outcome{Reason: classify(ctx, err), Err: err}
	}

	c.setState(StateReady)
	c.deps.Console.Notice(bannerMessage)

	if c.opts.SmokeTest {
		c.smokeTest(ctx)
	}
	return c.loop(ctx)
}

// validate loads the credential and then the configuration. The
// credential comes first so a missing key is reported before any file is
// read.
func (c *Controller) validate() error {
	c.setState(StateValidating)

	cred, err := c.deps.LoadCredential()
	if err != nil {
		return err
	}
	c.cred = cred

	cfg, err := c.deps.LoadConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.log.Info().Str("config", cfg.Path).Stringer("credential", cred).Int("servers", len(cfg.EnabledServers())).Msg("configuration loaded")
	return nil
}

// connect opens the tool servers, retrying with a fixed delay.
func (c *Controller) connect(ctx context.Context) (Connection, error) {
	var conn Connection
	attempt := 0

	op := func() error {
		attempt++
		var err error
		conn, err = c.connectOnce(ctx)
		if err == nil {
			return nil
		}
		c.log.Warn().Err(err).Int("attempt", attempt).Msg("connection attempt failed")
		c.publish(event.ReconnectAttempted, event.ReconnectAttemptedData{Phase: "startup", Attempt: attempt, Error: err.Error()})
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.deps.Console.Notice(fmt.Sprintf("Connection attempt %d of %d failed: %v. Retrying in %s...",
			attempt, c.opts.ConnectAttempts, err, wait))
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.opts.RetryDelay), uint64(c.opts.ConnectAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotifyWithTimer(op, policy, notify, c.deps.Timer); err != nil {
		return nil, fmt.Errorf("failed to connect after %d attempts: %w", attempt, err)
	}
	return conn, nil
}

// connectOnce makes one connection attempt. A connection that opens but
// fails the probe is closed and counts as a failed attempt.
func (c *Controller) connectOnce(ctx context.Context) (Connection, error) {
	conn, err := c.deps.Connect(ctx, c.cfg.EnabledServers())
	if err != nil {
		return nil, err
	}
	if !conn.Probe(ctx) {
		conn.Close()
		return nil, &mcp.ConnectionError{Err: ErrProbeFailed}
	}
	return conn, nil
}

// startSession builds the backend and agent over conn and adopts the new
// session. conn is closed when the session cannot be built.
func (c *Controller) startSession(ctx context.Context, conn Connection, conv *agent.Conversation) error {
	backend, err := c.deps.NewBackend(ctx, c.cred)
	if err != nil {
		conn.Close()
		return err
	}

	id := newSessionID()
	session := &Session{
		ID:           id,
		Connection:   conn,
		Agent:        c.deps.NewAgent(backend, conn, id),
		Conversation: conv,
		StartedAt:    time.Now(),
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.log.Info().Str("session", id).Str("provider", backend.ID()).Str("model", backend.Model()).
		Int("tools", len(conn.Tools())).Int("turns", conv.Len()).Msg("session started")
	c.publish(event.SessionStarted, event.SessionStartedData{
		SessionID: id,
		Servers:   session.servers(),
		ToolCount: len(conn.Tools()),
		Provider:  backend.ID(),
		Model:     backend.Model(),
		Migrated:  conv.Len(),
	})
	return nil
}

// closeSession releases the live session, if any.
func (c *Controller) closeSession(reason string) {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return
	}
	if err := session.Connection.Close(); err != nil {
		c.log.Warn().Err(err).Str("session", session.ID).Msg("failed to close connection")
	}
	c.publish(event.SessionClosed, event.SessionClosedData{SessionID: session.ID, Reason: reason})
}

// smokeTest runs one turn on a scratch conversation. Failures are only
// logged.
func (c *Controller) smokeTest(ctx context.Context) {
	session := c.Session()
	resp, err := session.Agent.Run(ctx, agent.NewConversation(), SmokeTestPrompt)
	if err != nil {
		c.log.Warn().Err(err).Msg("smoke test failed")
		return
	}
	c.log.Info().Str("response", resp).Msg("smoke test passed")
}

// loop reads and answers input until the run ends.
func (c *Controller) loop(ctx context.Context) Outcome {
	for {
		line, err := c.deps.Console.ReadLine(ctx)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				return Outcome{Reason: ReasonExit}
			case ctx.Err() != nil, errors.Is(err, ErrInterrupted):
				return Outcome{Reason: ReasonInterrupted, Err: ErrInterrupted}
			default:
				c.deps.Console.Error(err)
				return Outcome{Reason: ReasonFailure, Err: err}
			}
		}

		input := strings.TrimSpace(line)
		switch {
		case input == "":
			continue
		case IsExitWord(input):
			return Outcome{Reason: ReasonExit}
		case strings.HasPrefix(input, "/"):
			c.command(ctx, input)
			continue
		}

		if out, done := c.turn(ctx, input); done {
			return out
		}
	}
}

// turn answers one input. It reports done when the run must end.
func (c *Controller) turn(ctx context.Context, input string) (Outcome, bool) {
	c.setState(StateRunningTurn)
	session := c.Session()

	resp, err := session.Agent.Run(ctx, session.Conversation, input)
	if err == nil {
		session.Conversation.Append(input, resp)
		c.deps.Console.Reply(resp)
		c.publish(event.TurnCompleted, event.TurnCompletedData{SessionID: session.ID, Turn: session.Conversation.Len()})
		c.setState(StateReady)
		return Outcome{}, false
	}

	if ctx.Err() != nil {
		return Outcome{Reason: ReasonInterrupted, Err: ErrInterrupted}, true
	}

	c.log.Error().Err(err).Str("session", session.ID).Msg("turn failed")
	c.publish(event.TurnFailed, event.TurnFailedData{SessionID: session.ID, Error: err.Error()})
	c.deps.Console.Error(err)

	c.setState(StateReconnecting)
	if err := c.reconnect(ctx); err != nil {
		if ctx.Err() != nil {
			return Outcome{Reason: ReasonInterrupted, Err: ErrInterrupted}, true
		}
		c.log.Error().Err(err).Msg("reconnect failed")
		c.deps.Console.Error(err)
		c.deps.Console.Notice(restartMessage)
		return Outcome{Reason: ReasonReconnect, Err: err}, true
	}

	c.deps.Console.Notice(reconnectedMessage)
	c.setState(StateReady)
	return Outcome{}, false
}

// reconnect replaces the live session after a failed turn. The old
// connection is closed first and exactly one new attempt is made.
func (c *Controller) reconnect(ctx context.Context) error {
	old := c.Session()
	conv := agent.NewConversation()
	if c.opts.Memory == config.MemoryMigrate && old != nil {
		conv = old.Conversation.Clone()
	}
	c.closeSession("reconnect")

	conn, err := c.connectOnce(ctx)
	if err != nil {
		c.publish(event.ReconnectAttempted, event.ReconnectAttemptedData{Phase: "recovery", Attempt: 1, Error: err.Error()})
		return fmt.Errorf("reconnect: %w", err)
	}
	c.publish(event.ReconnectAttempted, event.ReconnectAttemptedData{Phase: "recovery", Attempt: 1})

	if err := c.startSession(ctx, conn, conv); err != nil {
		return fmt.Errorf("reconnect: %w", err)
	}
	return nil
}
