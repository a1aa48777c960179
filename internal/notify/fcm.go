package notify

import (
	"context"
	"fmt"
	"strings"

	fcm "google.golang.org/api/fcm/v1"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// fcmSender talks to the FCM HTTP v1 API.
type fcmSender struct {
	svc    *fcm.Service
	parent string
}

// NewFCMDispatcher builds a push dispatcher for projectID. credentials is a
// service-account file path or the inline JSON document; empty uses
// application default credentials.
func NewFCMDispatcher(ctx context.Context, db *gorm.DB, projectID, credentials string) (*PushDispatcher, error) {
	svc, err := fcm.NewService(ctx, credentialOptions(credentials)...)
	if err != nil {
		return nil, fmt.Errorf("fcm client: %w", err)
	}
	return &PushDispatcher{
		db:     db,
		sender: &fcmSender{svc: svc, parent: "projects/" + projectID},
	}, nil
}

func credentialOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	opts := []option.ClientOption{option.WithScopes(fcm.FirebaseMessagingScope)}
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func (s *fcmSender) send(ctx context.Context, token string, msg Message) error {
	req := &fcm.SendMessageRequest{
		Message: &fcm.Message{
			Token: token,
			Notification: &fcm.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		},
	}
	_, err := s.svc.Projects.Messages.Send(s.parent, req).Context(ctx).Do()
	if err != nil && isUnregistered(err) {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return err
}
