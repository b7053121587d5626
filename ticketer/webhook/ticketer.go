package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/w-h-a/support/ticketer"
)

type webhookTicketer struct {
	options ticketer.Options
	client  *http.Client
}

func (w *webhookTicketer) Deliver(ctx context.Context, ticket ticketer.Ticket) error {
	if len(w.options.Location) == 0 {
		return ticketer.DeliveryFailed(errors.New("no webhook url configured"))
	}

	body, err := json.Marshal(ticket)
	if err != nil {
		return ticketer.DeliveryFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.options.Location, bytes.NewReader(body))
	if err != nil {
		return ticketer.DeliveryFailed(err)
	}

	req.Header.Set("Content-Type", "application/json")

	rsp, err := w.client.Do(req)
	if err != nil {
		return ticketer.DeliveryFailed(err)
	}
	defer rsp.Body.Close()

	io.Copy(io.Discard, rsp.Body)

	if rsp.StatusCode < 200 || rsp.StatusCode >= 300 {
		return ticketer.DeliveryFailed(fmt.Errorf("webhook returned %d", rsp.StatusCode))
	}

	return nil
}

// NewTicketer posts tickets as JSON to an automation webhook such as an n8n
// workflow.
func NewTicketer(opts ...ticketer.Option) ticketer.Ticketer {
	options := ticketer.NewOptions(opts...)

	return &webhookTicketer{
		options: options,
		client: &http.Client{
			Timeout: options.Timeout,
		},
	}
}
