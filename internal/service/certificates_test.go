package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/certificate"
	"eventnest/internal/model"
	"eventnest/internal/repo"
	"eventnest/internal/token"
)

// stubRepo overrides only what the handler under test touches.
type stubRepo struct {
	repo.Repository
	event *model.Event
}

func (s *stubRepo) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	if s.event != nil && s.event.ID == id {
		return s.event, nil
	}
	return nil, repo.ErrEventNotFound
}

type emptyCertStore struct {
	event *model.Event
}

func (s *emptyCertStore) GetEventByID(_ context.Context, _ int64) (*model.Event, error) {
	return s.event, nil
}

func (s *emptyCertStore) GetAttendedRegistrations(_ context.Context, _ int64) ([]model.RegistrationDetail, error) {
	return nil, nil
}

func (s *emptyCertStore) GetCertifiedUserIDs(_ context.Context, _ int64) (map[int64]bool, error) {
	return nil, nil
}

func (s *emptyCertStore) CreateCertificate(_ context.Context, _, _ int64) (*model.Certificate, error) {
	return nil, repo.ErrDuplicateCertificate
}

func (s *emptyCertStore) UpdateCertificateURL(_ context.Context, _ int64, _ string) error {
	return nil
}

func (s *emptyCertStore) GetCertificateByID(_ context.Context, _ int64) (*model.CertificateDetail, error) {
	return nil, repo.ErrCertificateNotFound
}

type nopRenderer struct{}

func (nopRenderer) Render(*model.CertificateDetail) error { return nil }
func (nopRenderer) ArtifactPath(int64) string             { return "" }

type nopNotifier struct{}

func (nopNotifier) CertificateIssued(context.Context, int64) error { return nil }

func TestGenerateCertificatesResponds201(t *testing.T) {
	log := zerolog.Nop()
	event := &model.Event{ID: 10, OrganizerID: 2}

	certs := certificate.NewManager(&emptyCertStore{event: event}, nopRenderer{}, nopNotifier{}, &log)
	svc := NewService(&stubRepo{event: event}, &log, nil, certs, "secret")

	app := ginext.New("release")
	app.POST("/events/:id/generate-certificates", func(c *ginext.Context) {
		c.Set(UserContextKey, &token.UserContext{ID: 2, Role: model.RoleOrganizer})
		svc.GenerateCertificates(c)
	})

	req := httptest.NewRequest(http.MethodPost, "/events/10/generate-certificates", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "No attendees found")
}
