package certificate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventnest/internal/model"
	"eventnest/internal/repo"
	"eventnest/internal/token"
)

type fakeStore struct {
	events    map[int64]*model.Event
	attended  []model.RegistrationDetail
	certified map[int64]bool
	certs     map[int64]*model.CertificateDetail
	nextID    int64
	urls      map[int64]string

	createErr map[int64]error // keyed by user id
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[int64]*model.Event),
		certified: make(map[int64]bool),
		certs:     make(map[int64]*model.CertificateDetail),
		urls:      make(map[int64]string),
		createErr: make(map[int64]error),
		nextID:    1,
	}
}

func (f *fakeStore) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	if e, ok := f.events[id]; ok {
		return e, nil
	}
	return nil, repo.ErrEventNotFound
}

func (f *fakeStore) GetAttendedRegistrations(_ context.Context, _ int64) ([]model.RegistrationDetail, error) {
	return f.attended, nil
}

func (f *fakeStore) GetCertifiedUserIDs(_ context.Context, _ int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(f.certified))
	for k, v := range f.certified {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) CreateCertificate(_ context.Context, userID, eventID int64) (*model.Certificate, error) {
	if err := f.createErr[userID]; err != nil {
		return nil, err
	}
	if f.certified[userID] {
		return nil, repo.ErrDuplicateCertificate
	}
	c := &model.Certificate{ID: f.nextID, UserID: userID, EventID: eventID, IssuedAt: time.Now()}
	f.nextID++
	f.certified[userID] = true
	f.certs[c.ID] = &model.CertificateDetail{
		Certificate:   *c,
		RecipientName: fmt.Sprintf("user-%d", userID),
		EventTitle:    "Intro to Distributed Systems",
	}
	return c, nil
}

func (f *fakeStore) UpdateCertificateURL(_ context.Context, id int64, url string) error {
	if _, ok := f.certs[id]; !ok {
		return repo.ErrCertificateNotFound
	}
	f.urls[id] = url
	return nil
}

func (f *fakeStore) GetCertificateByID(_ context.Context, id int64) (*model.CertificateDetail, error) {
	if c, ok := f.certs[id]; ok {
		return c, nil
	}
	return nil, repo.ErrCertificateNotFound
}

type fakeRenderer struct {
	dir       string
	renderErr map[int64]error // keyed by certificate id
	rendered  []int64
}

func (f *fakeRenderer) Render(d *model.CertificateDetail) error {
	if err := f.renderErr[d.ID]; err != nil {
		return err
	}
	f.rendered = append(f.rendered, d.ID)
	if f.dir != "" {
		return os.WriteFile(f.ArtifactPath(d.ID), []byte("%PDF-fake"), 0o644)
	}
	return nil
}

func (f *fakeRenderer) ArtifactPath(certificateID int64) string {
	return filepath.Join(f.dir, fmt.Sprintf("certificate-%d.pdf", certificateID))
}

type fakeNotifier struct {
	errFor map[int64]error // keyed by certificate id
	issued []int64
}

func (f *fakeNotifier) CertificateIssued(_ context.Context, certificateID int64) error {
	if err := f.errFor[certificateID]; err != nil {
		return err
	}
	f.issued = append(f.issued, certificateID)
	return nil
}

func attendedReg(userID, eventID int64) model.RegistrationDetail {
	return model.RegistrationDetail{
		Registration: model.Registration{UserID: userID, EventID: eventID, Attended: true},
		UserName:     fmt.Sprintf("user-%d", userID),
	}
}

func newTestManager(store *fakeStore, r *fakeRenderer, n *fakeNotifier) *Manager {
	log := zerolog.Nop()
	return NewManager(store, r, n, &log)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("issues one certificate per eligible attendee", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10), attendedReg(2, 10), attendedReg(3, 10)}
		renderer := &fakeRenderer{renderErr: map[int64]error{}}
		notif := &fakeNotifier{}
		m := newTestManager(store, renderer, notif)

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)

		assert.Equal(t, 3, res.Generated)
		assert.Zero(t, res.Failed)
		assert.Equal(t, 3, res.TotalEligible)
		assert.Equal(t, "Successfully generated 3 certificate(s).", res.Message)
		assert.Len(t, notif.issued, 3)

		for id := range store.certs {
			assert.Equal(t, fmt.Sprintf("/certificates/%d/download", id), store.urls[id])
		}
	})

	t.Run("no attendees", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		m := newTestManager(store, &fakeRenderer{renderErr: map[int64]error{}}, &fakeNotifier{})

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, res.Generated)
		assert.Zero(t, res.TotalEligible)
		assert.Equal(t, "No attendees found for certificate generation.", res.Message)
	})

	t.Run("rerun issues nothing new", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10), attendedReg(2, 10)}
		renderer := &fakeRenderer{renderErr: map[int64]error{}}
		m := newTestManager(store, renderer, &fakeNotifier{})

		first, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, first.Generated)

		second, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, second.Generated)
		assert.Equal(t, "All eligible attendees already have certificates.", second.Message)
		assert.Len(t, renderer.rendered, 2)
	})

	t.Run("one failure does not abort the batch", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10), attendedReg(2, 10), attendedReg(3, 10)}
		store.createErr[2] = errors.New("insert failed")
		m := newTestManager(store, &fakeRenderer{renderErr: map[int64]error{}}, &fakeNotifier{})

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Generated)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, "Successfully generated 2 certificate(s). 1 failed.", res.Message)
	})

	t.Run("render failure counts as failed", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10)}
		renderer := &fakeRenderer{renderErr: map[int64]error{1: errors.New("disk full")}}
		notif := &fakeNotifier{}
		m := newTestManager(store, renderer, notif)

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, res.Generated)
		assert.Equal(t, 1, res.Failed)
		assert.Empty(t, notif.issued)
	})

	t.Run("notification failure counts as failed", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10), attendedReg(2, 10)}
		notif := &fakeNotifier{errFor: map[int64]error{1: errors.New("broker down")}}
		m := newTestManager(store, &fakeRenderer{renderErr: map[int64]error{}}, notif)

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Generated)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, "Successfully generated 1 certificate(s). 1 failed.", res.Message)
	})

	t.Run("concurrent run winning the insert is neither generated nor failed", func(t *testing.T) {
		store := newFakeStore()
		store.events[10] = &model.Event{ID: 10}
		store.attended = []model.RegistrationDetail{attendedReg(1, 10)}
		// The other run committed after our certified set was read.
		store.createErr[1] = repo.ErrDuplicateCertificate
		notif := &fakeNotifier{}
		m := newTestManager(store, &fakeRenderer{renderErr: map[int64]error{}}, notif)

		res, err := m.Generate(ctx, 10)
		require.NoError(t, err)
		assert.Zero(t, res.Generated)
		assert.Zero(t, res.Failed)
		assert.Equal(t, 1, res.TotalEligible)
		assert.Empty(t, notif.issued)
	})

	t.Run("unknown event", func(t *testing.T) {
		m := newTestManager(newFakeStore(), &fakeRenderer{renderErr: map[int64]error{}}, &fakeNotifier{})
		_, err := m.Generate(ctx, 404)
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestDownload(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fakeStore, *fakeRenderer, *Manager) {
		t.Helper()
		store := newFakeStore()
		store.certs[7] = &model.CertificateDetail{
			Certificate: model.Certificate{ID: 7, UserID: 1, EventID: 10},
			OrganizerID: 2,
		}
		renderer := &fakeRenderer{dir: t.TempDir(), renderErr: map[int64]error{}}
		return store, renderer, newTestManager(store, renderer, &fakeNotifier{})
	}

	writeArtifact := func(t *testing.T, r *fakeRenderer, id int64) {
		t.Helper()
		require.NoError(t, os.WriteFile(r.ArtifactPath(id), []byte("%PDF-fake"), 0o644))
	}

	t.Run("owner downloads", func(t *testing.T) {
		_, renderer, m := setup(t)
		writeArtifact(t, renderer, 7)

		detail, path, err := m.Download(ctx, 7, &token.UserContext{ID: 1, Role: model.RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, int64(7), detail.ID)
		assert.Equal(t, renderer.ArtifactPath(7), path)
	})

	t.Run("event organizer downloads", func(t *testing.T) {
		_, renderer, m := setup(t)
		writeArtifact(t, renderer, 7)

		_, _, err := m.Download(ctx, 7, &token.UserContext{ID: 2, Role: model.RoleOrganizer})
		assert.NoError(t, err)
	})

	t.Run("admin downloads", func(t *testing.T) {
		_, renderer, m := setup(t)
		writeArtifact(t, renderer, 7)

		_, _, err := m.Download(ctx, 7, &token.UserContext{ID: 99, Role: model.RoleAdmin})
		assert.NoError(t, err)
	})

	t.Run("stranger is refused", func(t *testing.T) {
		_, _, m := setup(t)

		_, _, err := m.Download(ctx, 7, &token.UserContext{ID: 42, Role: model.RoleStudent})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("other organizer is refused", func(t *testing.T) {
		_, _, m := setup(t)

		_, _, err := m.Download(ctx, 7, &token.UserContext{ID: 3, Role: model.RoleOrganizer})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing row", func(t *testing.T) {
		_, _, m := setup(t)

		_, _, err := m.Download(ctx, 404, &token.UserContext{ID: 1, Role: model.RoleStudent})
		assert.ErrorIs(t, err, ErrCertificateNotFound)
	})

	t.Run("missing artifact is distinct from missing row", func(t *testing.T) {
		_, _, m := setup(t)

		_, _, err := m.Download(ctx, 7, &token.UserContext{ID: 1, Role: model.RoleStudent})
		assert.ErrorIs(t, err, ErrArtifactMissing)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	store.certs[7] = &model.CertificateDetail{
		Certificate:   model.Certificate{ID: 7, UserID: 1, EventID: 10},
		RecipientName: "Ada",
	}
	m := newTestManager(store, &fakeRenderer{renderErr: map[int64]error{}}, &fakeNotifier{})

	t.Run("known certificate", func(t *testing.T) {
		d, err := m.Verify(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Ada", d.RecipientName)
	})

	t.Run("unknown certificate", func(t *testing.T) {
		_, err := m.Verify(ctx, 404)
		assert.ErrorIs(t, err, ErrCertificateNotFound)
	})
}
