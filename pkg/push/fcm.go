package push

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMGateway sends messages through Firebase Cloud Messaging for clients that
// register a bare device token instead of an Expo token
type FCMGateway struct {
	client *messaging.Client
}

// NewFCMGateway initializes the Firebase messaging client. Returns nil (not
// an error) when credentials are absent so the server can start with FCM
// delivery disabled.
func NewFCMGateway(credentialsFile string) (*FCMGateway, error) {
	if credentialsFile == "" {
		log.Println("⚠️  Firebase credentials not provided, FCM delivery disabled")
		return nil, nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		return nil, err
	}

	log.Println("✅ Firebase FCM initialized")
	return &FCMGateway{client: client}, nil
}

// Send delivers the message to a single FCM device token. Token-level errors
// (unregistered or malformed token) come back as rejections; quota and
// availability errors are transport failures so the dispatcher can retry.
func (g *FCMGateway) Send(ctx context.Context, msg Message) (Receipt, error) {
	fcmMsg := &messaging.Message{
		Token: msg.To,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: msg.Sound,
				},
			},
		},
	}

	id, err := g.client.Send(ctx, fcmMsg)
	if err != nil {
		if messaging.IsUnregistered(err) {
			return Receipt{Accepted: false, ErrorCode: "DeviceNotRegistered"}, nil
		}
		if messaging.IsInvalidArgument(err) {
			return Receipt{Accepted: false, ErrorCode: "InvalidToken"}, nil
		}
		return Receipt{}, err
	}

	return Receipt{Accepted: true, ProviderMessageID: id}, nil
}
