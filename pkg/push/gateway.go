// Package push delivers reminders to third-party push-notification services.
// The store and dispatcher treat a gateway as a black box: a returned error
// is a transport failure and may be retried, Receipt.Accepted=false is a
// token-level rejection and is terminal.
package push

import (
	"context"
	"strings"
)

// Message is one push notification addressed to a single device token
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Sound string            `json:"sound,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Receipt is a gateway's verdict on one message
type Receipt struct {
	Accepted          bool
	ProviderMessageID string
	ErrorCode         string
}

// Gateway sends a single push message
type Gateway interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

// Router picks a concrete gateway by token shape: Expo tokens look like
// ExponentPushToken[...], anything else is treated as a bare FCM device
// token. A nil backend rejects the message instead of dropping it.
type Router struct {
	expo Gateway
	fcm  Gateway
}

func NewRouter(expo, fcm Gateway) *Router {
	return &Router{expo: expo, fcm: fcm}
}

// Send routes the message to the matching backend
func (r *Router) Send(ctx context.Context, msg Message) (Receipt, error) {
	gw := r.fcm
	if strings.HasPrefix(msg.To, "ExponentPushToken[") || strings.HasPrefix(msg.To, "ExpoPushToken[") {
		gw = r.expo
	}
	if gw == nil {
		return Receipt{Accepted: false, ErrorCode: "NoGatewayConfigured"}, nil
	}
	return gw.Send(ctx, msg)
}
