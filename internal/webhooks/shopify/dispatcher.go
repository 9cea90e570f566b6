package shopifywebhook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/metrics"
)

// EntryFinder looks up waitlist entries by email. Implementations normalize the email.
type EntryFinder interface {
	FindByEmail(ctx context.Context, email string) ([]waitlist.Entry, error)
}

// Handler reacts to one verified event and the entries sharing its email.
type Handler interface {
	Handle(ctx context.Context, event *Event, matches []waitlist.Entry) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event, matches []waitlist.Entry) error

func (f HandlerFunc) Handle(ctx context.Context, event *Event, matches []waitlist.Entry) error {
	return f(ctx, event, matches)
}

// Result describes a completed dispatch.
type Result struct {
	Kind    enums.WebhookKind `json:"kind"`
	Matched int               `json:"matched"`
	Message string            `json:"message"`
}

type DispatcherParams struct {
	Finder  EntryFinder
	Logger  *logger.Logger
	Metrics *metrics.WebhookMetrics
}

// Dispatcher routes verified events to the handler registered for their kind.
type Dispatcher struct {
	finder  EntryFinder
	logg    *logger.Logger
	metrics *metrics.WebhookMetrics

	mu       sync.RWMutex
	handlers map[enums.WebhookKind]Handler
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Finder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "entry finder is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &Dispatcher{
		finder:   params.Finder,
		logg:     params.Logger,
		metrics:  params.Metrics,
		handlers: map[enums.WebhookKind]Handler{},
	}, nil
}

// Register installs handler for kind, replacing any previous one.
func (d *Dispatcher) Register(kind enums.WebhookKind, handler Handler) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown webhook kind %q", kind)
	}
	if handler == nil {
		return fmt.Errorf("handler for %s is nil", kind)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
	return nil
}

// Dispatch correlates the event with waitlist entries by normalized email and
// invokes the registered handler. A missing email or zero matches is a normal
// outcome; the handler still runs with an empty slice.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) (Result, error) {
	if event == nil {
		return Result{}, pkgerrors.New(pkgerrors.CodeInternal, "event is required")
	}

	d.mu.RLock()
	handler, ok := d.handlers[event.Kind]
	d.mu.RUnlock()
	if !ok {
		return Result{}, pkgerrors.New(pkgerrors.CodeInternal, "no handler registered").WithDetails(map[string]any{"kind": string(event.Kind)})
	}

	start := time.Now()
	ctx = d.logg.WithWebhookKind(ctx, string(event.Kind))
	result := Result{Kind: event.Kind, Message: successMessage(event.Kind)}

	email := waitlist.NormalizeEmail(event.Email())
	matches := []waitlist.Entry{}
	if email == "" {
		d.logg.Info(ctx, "webhook.no_email")
	} else {
		found, err := d.finder.FindByEmail(ctx, email)
		if err != nil {
			d.metrics.ObserveDispatch(string(event.Kind), time.Since(start), 0, err)
			return Result{}, err
		}
		if found != nil {
			matches = found
		}
		d.logg.Info(d.logg.WithField(ctx, "matched", len(matches)), fmt.Sprintf("found %d waitlist entries for this customer", len(matches)))
	}
	result.Matched = len(matches)

	err := handler.Handle(ctx, event, matches)
	d.metrics.ObserveDispatch(string(event.Kind), time.Since(start), len(matches), err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func successMessage(kind enums.WebhookKind) string {
	switch kind {
	case enums.WebhookKindOrderCreated:
		return "Order webhook processed"
	case enums.WebhookKindCustomerCreated:
		return "Customer webhook processed"
	}
	return "Webhook processed"
}
