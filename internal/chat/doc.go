/*
Package chat implements the interactive session controller of mcpchat.

A Controller owns the whole lifecycle of a chat run as an explicit state
machine:

	Uninitialized -> Validating -> Connecting -> Ready -> RunningTurn -> Ready
	                                                           |
	                                                           v
	                                 Terminated <- Reconnecting -> Ready

Validating loads the credential and then the configuration file; either
failure ends the run before any connection is attempted. Connecting makes
up to three connection attempts with a fixed two second wait between them
(cenkalti/backoff). Each attempt opens every enabled server and probes it;
a failed probe counts as a failed attempt.

Every connection is wrapped in an immutable Session together with the
agent and the conversation built on it. A failed turn closes the session
and makes exactly one new connection attempt. On success the user is asked
to send the failed message again; it is never replayed. On failure the run
ends and the user is asked to restart. With config.MemoryMigrate the turns
of the old session are copied into the new one; by default they are
discarded.

# Console

Input comes from a Console. NewConsole picks a readline console with
history and slash command completion when stdin is a terminal, and a plain
line reader otherwise. Empty lines are ignored, exit, quit and bye end the
chat, and lines starting with "/" are commands:

	/help     show available commands
	/tools    list the tools of the current session
	/status   probe the tool servers
	/history  show the conversation so far

# Outcome

Run returns an Outcome whose ExitCode is 0 for a normal exit, 2 for a
configuration failure, 3 when the tool servers cannot be reached, 130 when
interrupted and 1 otherwise.
*/
package chat
