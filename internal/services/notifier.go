package services

import (
	"fmt"

	"challenge-feed-backend/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// PushNotifier delivers friend-request pushes over APNs. Delivery is
// fire-and-forget: failures are logged and never affect the operation that
// triggered them.
type PushNotifier struct {
	client *apns2.Client
	topic  string
}

// NewPushNotifier creates an APNs notifier from a p12 certificate
func NewPushNotifier(certPath, certPassword, topic string, production bool) (*PushNotifier, error) {
	cert, err := certificate.FromP12File(certPath, certPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushNotifier{
		client: client,
		topic:  topic,
	}, nil
}

// RequestReceived notifies a user of a new incoming friend request
func (n *PushNotifier) RequestReceived(to, from models.User) {
	n.push(to, fmt.Sprintf("%s sent you a friend request", displayName(from)))
}

// RequestAccepted notifies the sender that their request was accepted
func (n *PushNotifier) RequestAccepted(to, from models.User) {
	n.push(to, fmt.Sprintf("%s accepted your friend request", displayName(from)))
}

func (n *PushNotifier) push(to models.User, message string) {
	if to.PushToken == nil || *to.PushToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: *to.PushToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().Alert(message).Sound("default"),
	}

	res, err := n.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Str("user_id", to.ID).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().
			Str("user_id", to.ID).
			Int("status", res.StatusCode).
			Str("reason", res.Reason).
			Msg("Push notification rejected")
		return
	}

	log.Debug().Str("user_id", to.ID).Msg("Push notification sent")
}

func displayName(user models.User) string {
	if user.Username != nil && *user.Username != "" {
		return *user.Username
	}
	if user.Email != nil && *user.Email != "" {
		return *user.Email
	}
	return "Someone"
}
