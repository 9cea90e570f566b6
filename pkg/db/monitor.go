package db

import (
	"context"
	"time"
)

// ConnectionEventType names a change in store reachability.
type ConnectionEventType string

const (
	EventConnected    ConnectionEventType = "connected"
	EventDisconnected ConnectionEventType = "disconnected"
	EventReconnected  ConnectionEventType = "reconnected"
	EventError        ConnectionEventType = "error"
)

// ConnectionEvent is emitted by Watch whenever reachability changes.
type ConnectionEvent struct {
	Type ConnectionEventType
	Err  error
	At   time.Time
}

const defaultWatchInterval = 30 * time.Second

// Watch pings the store every interval and emits an event on each state change.
// The first successful ping emits EventConnected and a failing first ping emits
// EventError. The channel is closed when ctx ends.
// Events are dropped rather than blocking the monitor if the consumer falls behind.
func (c *Client) Watch(ctx context.Context, interval time.Duration) <-chan ConnectionEvent {
	return watch(ctx, c, interval, time.Now)
}

func watch(ctx context.Context, pinger Pinger, interval time.Duration, now func() time.Time) <-chan ConnectionEvent {
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	events := make(chan ConnectionEvent, 8)

	go func() {
		defer close(events)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var seen, up bool
		check := func() {
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := pinger.Ping(pingCtx)
			cancel()
			if ctx.Err() != nil {
				return
			}

			var next *ConnectionEvent
			switch {
			case err == nil && !seen:
				next = &ConnectionEvent{Type: EventConnected}
			case err == nil && !up:
				next = &ConnectionEvent{Type: EventReconnected}
			case err != nil && !seen:
				next = &ConnectionEvent{Type: EventError, Err: err}
			case err != nil && up:
				next = &ConnectionEvent{Type: EventDisconnected, Err: err}
			}
			seen = true
			up = err == nil

			if next == nil {
				return
			}
			next.At = now()
			select {
			case events <- *next:
			default:
			}
		}

		check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()

	return events
}
