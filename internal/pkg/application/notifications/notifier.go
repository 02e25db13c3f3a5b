package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	"github.com/velosovictor/frontblok-crud/pkg/crud"
)

const (
	EventCreated string = "created"
	EventUpdated string = "updated"
	EventRemoved string = "removed"
)

// Notifier posts a notification to a configured webhook endpoint whenever a
// record changes. Notifications are delivered in change order by a single
// consumer, so a slow endpoint delays delivery but never reorders it.
type Notifier interface {
	Start() error
	Stop() error

	EntityCreated(ctx context.Context, entityName string, record crud.Record)
	EntityUpdated(ctx context.Context, entityName string, record crud.Record)
	EntityRemoved(ctx context.Context, entityName, entityID string)
}

// Notification is the body that is posted to the webhook endpoint.
type Notification struct {
	ID         string        `json:"id"`
	Event      string        `json:"event"`
	Entity     string        `json:"entity"`
	NotifiedAt string        `json:"notifiedAt"`
	Data       []crud.Record `json:"data"`
}

func NewNotification(event, entityName string, records ...crud.Record) *Notification {
	return &Notification{
		ID:         uuid.NewString(),
		Event:      event,
		Entity:     entityName,
		NotifiedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Data:       records,
	}
}

var tracer = otel.Tracer("frontblok-api/notifier")

type action func()

type notifier struct {
	started  bool
	endpoint string

	queue chan action
}

func NewNotifier(ctx context.Context, endpoint string) (Notifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("notification endpoint must not be empty")
	}

	return &notifier{
		endpoint: endpoint,
		queue:    make(chan action, 32),
	}, nil
}

func (n *notifier) Start() error {
	if n.started {
		return fmt.Errorf("already started")
	}

	n.started = true

	go n.run()

	return nil
}

func (n *notifier) Stop() error {
	if n.started {
		n.started = false

		// Create a result channel so that we can wait for completion
		resultChan := make(chan bool)

		n.queue <- func() {
			// close the queue to signal the consumer that we are going out of business
			close(n.queue)
			resultChan <- true
		}

		// blocking read until our action has been processed
		<-resultChan
	}
	return nil
}

func (n *notifier) EntityCreated(ctx context.Context, entityName string, record crud.Record) {
	n.enqueue(ctx, NewNotification(EventCreated, entityName, record))
}

func (n *notifier) EntityUpdated(ctx context.Context, entityName string, record crud.Record) {
	n.enqueue(ctx, NewNotification(EventUpdated, entityName, record))
}

func (n *notifier) EntityRemoved(ctx context.Context, entityName, entityID string) {
	n.enqueue(ctx, NewNotification(EventRemoved, entityName, crud.NewRecord(entityID, nil)))
}

func (n *notifier) enqueue(ctx context.Context, notification *Notification) {
	if !n.started {
		return
	}

	var err error

	logger := logging.GetFromContext(ctx)

	// detach the span from the request context so that delivery survives it
	ctx, span := tracer.Start(
		tracing.ExtractHeaders(context.Background(), tracing.InjectHeaders(ctx)),
		"notify",
	)

	n.queue <- func() {
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = postNotification(ctx, notification, n.endpoint)
		if err != nil {
			logger.Error("failed to post notification", "err", err.Error())
		}
	}
}

func postNotification(ctx context.Context, notification *Notification, endpoint string) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshalling error (%w)", err)
	}

	httpClient := http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("unable to create new request (%w)", err)
	}

	req.Header.Add("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request (%w)", err)
	}

	defer resp.Body.Close()

	return nil
}

func (n *notifier) run() {
	// repeat until the queue is closed
	for action := range n.queue {
		if action == nil {
			return
		}

		action()
	}
}
