// Package certificate derives certificate eligibility from attendance and
// handles issuance, download authorization and public verification.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"eventnest/internal/model"
	"eventnest/internal/policy"
	"eventnest/internal/repo"
	"eventnest/internal/token"
)

var (
	ErrEventNotFound       = repo.ErrEventNotFound
	ErrCertificateNotFound = repo.ErrCertificateNotFound
	ErrForbidden           = errors.New("not authorized for this certificate")
	// ErrArtifactMissing means the row exists but its rendered file does not:
	// a server-side inconsistency, not a client error.
	ErrArtifactMissing = errors.New("certificate artifact missing")
)

// Store is the slice of the repository issuance needs.
type Store interface {
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetAttendedRegistrations(ctx context.Context, eventID int64) ([]model.RegistrationDetail, error)
	GetCertifiedUserIDs(ctx context.Context, eventID int64) (map[int64]bool, error)
	CreateCertificate(ctx context.Context, userID, eventID int64) (*model.Certificate, error)
	UpdateCertificateURL(ctx context.Context, id int64, url string) error
	GetCertificateByID(ctx context.Context, id int64) (*model.CertificateDetail, error)
}

// Renderer produces the certificate artifact. The artifact name embeds the
// certificate's own id, which is why the row must exist before rendering.
type Renderer interface {
	Render(d *model.CertificateDetail) error
	ArtifactPath(certificateID int64) string
}

// Notifier dispatches the certificate email. Failures are tolerated per item.
type Notifier interface {
	CertificateIssued(ctx context.Context, certificateID int64) error
}

// Result is the aggregate outcome of a bulk generation run.
type Result struct {
	Generated     int
	Failed        int
	TotalEligible int
	Message       string
}

type Manager struct {
	store    Store
	renderer Renderer
	notifier Notifier
	log      *zerolog.Logger
}

func NewManager(store Store, renderer Renderer, notifier Notifier, log *zerolog.Logger) *Manager {
	return &Manager{
		store:    store,
		renderer: renderer,
		notifier: notifier,
		log:      log,
	}
}

// Generate issues certificates for every attended registrant of the event who
// does not hold one yet. Registrants are processed one at a time; a failure
// for one is counted and the rest continue.
func (m *Manager) Generate(ctx context.Context, eventID int64) (*Result, error) {
	if _, err := m.store.GetEventByID(ctx, eventID); err != nil {
		return nil, err
	}

	attended, err := m.store.GetAttendedRegistrations(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if len(attended) == 0 {
		return &Result{Message: "No attendees found for certificate generation."}, nil
	}

	certified, err := m.store.GetCertifiedUserIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var eligible []model.RegistrationDetail
	for _, reg := range attended {
		if !certified[reg.UserID] {
			eligible = append(eligible, reg)
		}
	}
	if len(eligible) == 0 {
		return &Result{Message: "All eligible attendees already have certificates."}, nil
	}

	res := &Result{TotalEligible: len(eligible)}
	for _, reg := range eligible {
		issued, err := m.issueOne(ctx, &reg)
		if err != nil {
			m.log.Error().Err(err).
				Int64("user_id", reg.UserID).
				Int64("event_id", eventID).
				Msg("certificate generation failed for user")
			res.Failed++
			continue
		}
		if issued {
			res.Generated++
		}
	}

	res.Message = fmt.Sprintf("Successfully generated %d certificate(s).", res.Generated)
	if res.Failed > 0 {
		res.Message += fmt.Sprintf(" %d failed.", res.Failed)
	}
	return res, nil
}

// issueOne performs the two-phase write for a single registrant: first the
// row (so the artifact name can embed its id), then the artifact, then the
// reference, then the email. Every step, the notification included, must
// succeed for the item to count as issued. The bool reports whether this run
// issued the certificate; a concurrent run winning the insert is neither
// issued nor failed.
func (m *Manager) issueOne(ctx context.Context, reg *model.RegistrationDetail) (bool, error) {
	cert, err := m.store.CreateCertificate(ctx, reg.UserID, reg.EventID)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateCertificate) {
			m.log.Info().
				Int64("user_id", reg.UserID).
				Int64("event_id", reg.EventID).
				Msg("certificate already issued by a concurrent run, skipping")
			return false, nil
		}
		return false, err
	}

	detail, err := m.store.GetCertificateByID(ctx, cert.ID)
	if err != nil {
		return false, err
	}

	if err := m.renderer.Render(detail); err != nil {
		return false, fmt.Errorf("render certificate %d: %w", cert.ID, err)
	}

	url := fmt.Sprintf("/certificates/%d/download", cert.ID)
	if err := m.store.UpdateCertificateURL(ctx, cert.ID, url); err != nil {
		return false, err
	}

	if err := m.notifier.CertificateIssued(ctx, cert.ID); err != nil {
		return false, fmt.Errorf("dispatch certificate notification %d: %w", cert.ID, err)
	}

	m.log.Info().Int64("certificate_id", cert.ID).Int64("user_id", reg.UserID).Msg("certificate generated")
	return true, nil
}

// Download authorizes the requester and locates the artifact. The missing row
// and the missing file are distinct failures.
func (m *Manager) Download(ctx context.Context, certificateID int64, requester *token.UserContext) (*model.CertificateDetail, string, error) {
	detail, err := m.store.GetCertificateByID(ctx, certificateID)
	if err != nil {
		return nil, "", err
	}

	if detail.UserID != requester.ID &&
		!policy.CanManageEvent(requester.ID, requester.Role, detail.OrganizerID) {
		return nil, "", ErrForbidden
	}

	path := m.renderer.ArtifactPath(certificateID)
	if _, err := os.Stat(path); err != nil {
		m.log.Error().Err(err).Int64("certificate_id", certificateID).Str("path", path).Msg("certificate file not found")
		return nil, "", ErrArtifactMissing
	}

	return detail, path, nil
}

// Verify is the unauthenticated read behind public certificate verification.
func (m *Manager) Verify(ctx context.Context, certificateID int64) (*model.CertificateDetail, error) {
	return m.store.GetCertificateByID(ctx, certificateID)
}
