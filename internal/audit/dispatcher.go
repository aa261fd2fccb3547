package audit

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/agent-crm/internal/access"
)

const (
	ActionLogin           = "login"
	ActionClientCreated   = "client_created"
	ActionClientUpdated   = "client_updated"
	ActionClientDeleted   = "client_deleted"
	ActionClientsCleared  = "clients_cleared"
	ActionClientAssigned  = "client_assigned"
	ActionClientsImported = "clients_imported"
	ActionCommentAdded    = "comment_added"
	ActionCallRecorded    = "call_recorded"
	ActionAgentCreated    = "agent_created"

	EntityClient = "client"
	EntityUser   = "user"
)

type Event struct {
	ActorID  *uint
	Actor    string
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// EventFor fills the actor fields from p. The superuser has no user row
// and is recorded by name only.
func EventFor(p access.Principal, action, entity string, entityID *uint, metadata any) Event {
	ev := Event{
		Actor:    p.Username,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Metadata: metadata,
	}
	if p.UserID != 0 {
		id := p.UserID
		ev.ActorID = &id
	}
	return ev
}

// Sink accepts audit events without blocking the caller.
type Sink interface {
	Dispatch(ev Event)
}

type writer interface {
	Log(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	logger writer
	log    zerolog.Logger
	queue  chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(logger writer, log zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		logger: logger,
		log:    log,
		queue:  make(chan Event, 100),
		done:   make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.logger.Log(context.Background(), ev); err != nil {
			d.log.Error().Err(err).Str("action", ev.Action).Msg("audit write failed")
		}
	}
}

// Dispatch drops the event when the queue is full; auditing never fails a
// request.
func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn().Str("action", ev.Action).Msg("audit queue full, dropping event")
	}
}

// Close drains the queue and stops the worker. Dispatch must not be
// called afterwards.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	<-d.done
}

// Discard is a Sink that ignores events.
type Discard struct{}

func (Discard) Dispatch(Event) {}
