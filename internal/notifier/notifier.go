// Package notifier publishes notification jobs for the mail worker. Sending
// is fire-and-forget from the caller's point of view: a failed publish is an
// error the caller may log but never treats as fatal.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"eventnest/internal/dto"
	"eventnest/internal/rabbit"
)

type Notifier struct {
	rbt *rabbit.Client
}

func New(rbt *rabbit.Client) *Notifier {
	return &Notifier{rbt: rbt}
}

func (n *Notifier) RegistrationConfirmed(ctx context.Context, registrationID int64) error {
	return n.publish(dto.NotificationMessage{
		Kind:           dto.KindRegistrationConfirmed,
		RegistrationID: registrationID,
	})
}

func (n *Notifier) CertificateIssued(ctx context.Context, certificateID int64) error {
	return n.publish(dto.NotificationMessage{
		Kind:          dto.KindCertificateIssued,
		CertificateID: certificateID,
	})
}

func (n *Notifier) publish(msg dto.NotificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	return n.rbt.Publish(payload)
}
