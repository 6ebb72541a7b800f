package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultExpoURL is Expo's push-delivery endpoint
const DefaultExpoURL = "https://exp.host/--/api/v2/push/send"

// ExpoGateway sends messages through Expo's push service
type ExpoGateway struct {
	url    string
	client *http.Client
}

// NewExpoGateway creates an Expo gateway. An empty url selects the public
// Expo endpoint.
func NewExpoGateway(url string) *ExpoGateway {
	if url == "" {
		url = DefaultExpoURL
	}
	return &ExpoGateway{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// expoTicket is one entry of Expo's response envelope
type expoTicket struct {
	Status  string `json:"status"` // "ok" or "error"
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"` // e.g. DeviceNotRegistered
	} `json:"details"`
}

type expoResponse struct {
	Data json.RawMessage `json:"data"`
}

// Send posts the message to Expo. The response carries a per-message ticket:
// status "ok" means Expo accepted it for delivery, status "error" is a
// terminal rejection (bad or unregistered token). Network failures and non-2xx
// responses are transport errors.
func (g *ExpoGateway) Send(ctx context.Context, msg Message) (Receipt, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Receipt{}, fmt.Errorf("send push request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Receipt{}, fmt.Errorf("read push response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Receipt{}, fmt.Errorf("push service returned %d: %s", resp.StatusCode, raw)
	}

	var envelope expoResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Receipt{}, fmt.Errorf("decode push response: %w", err)
	}

	// Expo returns an object for a single message and an array for a batch
	ticket, err := decodeTicket(envelope.Data)
	if err != nil {
		return Receipt{}, err
	}

	if ticket.Status != "ok" {
		code := ticket.Details.Error
		if code == "" {
			code = ticket.Message
		}
		return Receipt{Accepted: false, ErrorCode: code}, nil
	}

	return Receipt{Accepted: true, ProviderMessageID: ticket.ID}, nil
}

func decodeTicket(data json.RawMessage) (expoTicket, error) {
	var single expoTicket
	if err := json.Unmarshal(data, &single); err == nil && single.Status != "" {
		return single, nil
	}

	var batch []expoTicket
	if err := json.Unmarshal(data, &batch); err == nil && len(batch) > 0 {
		return batch[0], nil
	}

	return expoTicket{}, fmt.Errorf("unexpected push response payload: %s", data)
}
