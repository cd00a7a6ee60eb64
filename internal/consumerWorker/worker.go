package consumerWorker

import (
	"context"
	"encoding/json"
	"time"

	"eventnest/internal/dto"
	"eventnest/internal/mailer"
	"eventnest/internal/rabbit"
	"eventnest/internal/repo"

	"github.com/wb-go/wbf/zlog"
)

const (
	mailAttempts = 3
	mailDelay    = 2 * time.Second
)

// ArtifactLocator resolves the on-disk path of a rendered certificate.
type ArtifactLocator interface {
	ArtifactPath(certificateID int64) string
}

// Reader consumes notification jobs published by the HTTP layer and turns
// them into outgoing email. Delivery failures are retried a bounded number
// of times and then dropped; the job itself is acked either way so a dead
// SMTP server cannot wedge the queue.
type Reader struct {
	RMQ       *rabbit.Client
	repo      repo.Repository
	mailer    *mailer.Mailer
	artifacts ArtifactLocator
	done      chan struct{}
	cancel    context.CancelFunc
}

func NewReader(rmq *rabbit.Client, repo repo.Repository, m *mailer.Mailer, artifacts ArtifactLocator) *Reader {
	return &Reader{
		RMQ:       rmq,
		repo:      repo,
		mailer:    m,
		artifacts: artifacts,
		done:      make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	zlog.Logger.Info().Msg("🐇 notification worker started")

	go func() {
		defer close(r.done)

		handler := func(body []byte) error {
			var msg dto.NotificationMessage
			if err := json.Unmarshal(body, &msg); err != nil {
				// A malformed payload would be redelivered forever; drop it.
				zlog.Logger.Error().
					Err(err).
					Msgf("Failed to unmarshal message: %s", string(body))
				return nil
			}

			switch msg.Kind {
			case dto.KindRegistrationConfirmed:
				r.handleRegistrationConfirmed(cctx, msg.RegistrationID)
			case dto.KindCertificateIssued:
				r.handleCertificateIssued(cctx, msg.CertificateID)
			default:
				zlog.Logger.Warn().
					Str("kind", msg.Kind).
					Msg("Unknown notification kind, dropping")
			}

			return nil
		}

		if err := r.RMQ.Consume(handler); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		zlog.Logger.Info().Msg("🛑 notification worker stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

func (r *Reader) handleRegistrationConfirmed(ctx context.Context, registrationID int64) {
	reg, err := r.repo.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Int64("registration_id", registrationID).
			Msg("Failed to load registration in worker")
		return
	}

	user, err := r.repo.GetUserByID(ctx, reg.UserID)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Int64("user_id", reg.UserID).
			Msg("Failed to load user in worker")
		return
	}

	event, err := r.repo.GetEventByID(ctx, reg.EventID)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Int64("event_id", reg.EventID).
			Msg("Failed to load event in worker")
		return
	}

	err = withRetries(ctx, func() error {
		return r.mailer.SendConfirmationEmail(user, event, reg)
	})
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Int64("registration_id", registrationID).
			Msg("Giving up on confirmation email")
		return
	}

	zlog.Logger.Info().
		Str("email", user.Email).
		Int64("registration_id", registrationID).
		Msg("📧 Confirmation email delivered")
}

func (r *Reader) handleCertificateIssued(ctx context.Context, certificateID int64) {
	detail, err := r.repo.GetCertificateByID(ctx, certificateID)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Int64("certificate_id", certificateID).
			Msg("Failed to load certificate in worker")
		return
	}

	path := r.artifacts.ArtifactPath(certificateID)

	err = withRetries(ctx, func() error {
		return r.mailer.SendCertificateEmail(detail, path)
	})
	if err != nil {
		zlog.Logger.Warn().
			Err(err).
			Int64("certificate_id", certificateID).
			Msg("Giving up on certificate email")
		return
	}

	zlog.Logger.Info().
		Str("email", detail.RecipientEmail).
		Int64("certificate_id", certificateID).
		Msg("📧 Certificate email delivered")
}

func withRetries(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= mailAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == mailAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(mailDelay * time.Duration(attempt)):
		}
	}
	return err
}
