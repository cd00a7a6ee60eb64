// Package registration implements the registration lifecycle for a
// (user, event) pair: Unregistered -> Registered -> CheckedIn. The CheckedIn
// state is terminal through this interface.
package registration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventnest/internal/model"
	"eventnest/internal/qr"
	"eventnest/internal/repo"
)

var (
	ErrEventNotFound        = repo.ErrEventNotFound
	ErrRegistrationNotFound = repo.ErrRegistrationNotFound
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrAlreadyCheckedIn     = errors.New("already checked in")
)

// Store is the slice of the repository the lifecycle needs.
type Store interface {
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetRegistrationByPair(ctx context.Context, userID, eventID int64) (*model.Registration, error)
	CreateRegistration(ctx context.Context, userID, eventID int64, ticketCode string) (*model.Registration, error)
	UpdateRegistrationQR(ctx context.Context, id int64, qrCode string) error
	GetRegistrationByTicket(ctx context.Context, eventID int64, ticketCode string) (*model.RegistrationDetail, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	MarkCheckedInTx(ctx context.Context, id int64) (*model.Registration, error)
	DeleteRegistration(ctx context.Context, userID, eventID int64) error
}

// QREncoder renders a ticket payload into a storable artifact reference.
type QREncoder interface {
	EncodeTicket(p qr.Payload) (string, error)
}

// Notifier dispatches the confirmation message. Failures are tolerated.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, registrationID int64) error
}

type Manager struct {
	store    Store
	qr       QREncoder
	notifier Notifier
	log      *zerolog.Logger
}

func NewManager(store Store, qrEnc QREncoder, notifier Notifier, log *zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		qr:       qrEnc,
		notifier: notifier,
		log:      log,
	}
}

// Register creates a registration for the pair, synthesizes a ticket code,
// attaches the QR artifact and dispatches the confirmation email.
//
// The row must exist before the QR payload can be built (the payload embeds
// the registration id), and the QR reference is persisted before the
// notification goes out. A QR or notification failure degrades the result
// instead of rolling the registration back.
func (m *Manager) Register(ctx context.Context, userID, eventID int64) (*model.Registration, error) {
	if _, err := m.store.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	if _, err := m.store.GetRegistrationByPair(ctx, userID, eventID); err == nil {
		return nil, ErrAlreadyRegistered
	} else if !errors.Is(err, repo.ErrRegistrationNotFound) {
		return nil, err
	}

	ticketCode := uuid.NewString()
	reg, err := m.store.CreateRegistration(ctx, userID, eventID, ticketCode)
	if err != nil {
		// Two concurrent registrations race past the pre-check; the unique
		// constraint settles it.
		if errors.Is(err, repo.ErrDuplicateRegistration) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	qrRef, err := m.qr.EncodeTicket(qr.Payload{
		TicketCode:     reg.TicketCode,
		EventID:        eventID,
		UserID:         userID,
		RegistrationID: reg.ID,
	})
	if err != nil {
		m.log.Warn().Err(err).Int64("registration_id", reg.ID).Msg("qr generation failed, ticket issued without qr code")
	} else if err := m.store.UpdateRegistrationQR(ctx, reg.ID, qrRef); err != nil {
		m.log.Warn().Err(err).Int64("registration_id", reg.ID).Msg("failed to persist qr code")
	} else {
		reg.QRCode = &qrRef
	}

	if err := m.notifier.RegistrationConfirmed(ctx, reg.ID); err != nil {
		m.log.Warn().Err(err).Int64("registration_id", reg.ID).Msg("failed to dispatch confirmation notification")
	}

	return reg, nil
}

// Unregister deletes the registration. An attended registration cannot be
// unregistered.
func (m *Manager) Unregister(ctx context.Context, userID, eventID int64) error {
	reg, err := m.store.GetRegistrationByPair(ctx, userID, eventID)
	if err != nil {
		return err
	}
	if reg.Attended {
		return ErrAlreadyCheckedIn
	}

	return m.store.DeleteRegistration(ctx, userID, eventID)
}

// VerifyTicket resolves a ticket code within one event without mutating
// anything. The bool reports whether the ticket was already used to check in.
func (m *Manager) VerifyTicket(ctx context.Context, eventID int64, ticketCode string) (*model.RegistrationDetail, bool, error) {
	reg, err := m.store.GetRegistrationByTicket(ctx, eventID, ticketCode)
	if err != nil {
		return nil, false, err
	}
	return reg, reg.Attended, nil
}

// CheckIn transitions the ticket's registration to CheckedIn. A repeated
// check-in returns the registration as it already stands together with
// ErrAlreadyCheckedIn so callers can surface the original timestamp.
func (m *Manager) CheckIn(ctx context.Context, eventID int64, ticketCode string) (*model.RegistrationDetail, error) {
	reg, err := m.store.GetRegistrationByTicket(ctx, eventID, ticketCode)
	if err != nil {
		return nil, err
	}
	if reg.Attended {
		return reg, ErrAlreadyCheckedIn
	}

	updated, err := m.store.MarkCheckedInTx(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	reg.Attended = updated.Attended
	reg.CheckedInAt = updated.CheckedInAt

	m.log.Info().Int64("registration_id", reg.ID).Int64("event_id", eventID).Msg("attendee checked in")
	return reg, nil
}

// MarkAttended is the administrative check-in addressed by registration id.
// Same conflict policy as CheckIn: an already-attended registration is
// reported, not overwritten.
func (m *Manager) MarkAttended(ctx context.Context, registrationID int64) (*model.Registration, error) {
	reg, err := m.store.GetRegistrationByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg.Attended {
		return reg, ErrAlreadyCheckedIn
	}

	return m.store.MarkCheckedInTx(ctx, registrationID)
}
