/*
Package event provides the pub/sub event system used to observe a chat run.

Publishers in the chat controller and the agent emit events; the verbose
console printer and the log journal subscribe to them without either side
knowing about the other.

# Architecture

Subscribers are called directly so they receive the typed Data values
defined in this package. Every published event is also encoded as JSON and
published to a watermill gochannel topic (Topic). The journal and any other
consumer that prefers messages over callbacks read from that topic.

# Event Types

	state.changed        lifecycle state transition        StateChangedData
	session.started      a chat session became ready       SessionStartedData
	session.closed       a chat session was torn down      SessionClosedData
	turn.completed       one user turn answered            TurnCompletedData
	turn.failed          one user turn failed              TurnFailedData
	tool.called          the agent executed a tool         ToolCalledData
	reconnect.attempted  a connection attempt failed       ReconnectAttemptedData
	config.changed       the configuration file changed    ConfigChangedData

# Basic Usage

	bus := event.NewBus()
	defer bus.Close()

	unsub := bus.Subscribe(event.ToolCalled, func(e event.Event) {
		data := e.Data.(event.ToolCalledData)
		fmt.Println("tool:", data.Tool)
	})
	defer unsub()

	bus.PublishSync(event.Event{
		Type: event.ToolCalled,
		Data: event.ToolCalledData{Tool: "toolbox_sum"},
	})

Publish delivers to each subscriber in its own goroutine. PublishSync
delivers in order in the caller's goroutine; the controller uses it for
state changes so observers see transitions in order.

# Journal

	if err := bus.Journal(ctx, logging.For("event")); err != nil {
		return err
	}

The journal writes every event to the log at debug level until ctx is done
or the bus is closed.
*/
package event
