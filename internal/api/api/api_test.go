package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/model"
	"eventnest/internal/token"
)

const testSecret = "router-test-secret"

// stubService records which handler a request was routed to.
type stubService struct {
	last string
}

func (s *stubService) mark(name string, c *ginext.Context) {
	s.last = name
	c.JSON(http.StatusOK, map[string]string{"handler": name})
}

func (s *stubService) Register(c *ginext.Context)             { s.mark("Register", c) }
func (s *stubService) Login(c *ginext.Context)                { s.mark("Login", c) }
func (s *stubService) Me(c *ginext.Context)                   { s.mark("Me", c) }
func (s *stubService) ListEvents(c *ginext.Context)           { s.mark("ListEvents", c) }
func (s *stubService) GetEvent(c *ginext.Context)             { s.mark("GetEvent", c) }
func (s *stubService) CreateEvent(c *ginext.Context)          { s.mark("CreateEvent", c) }
func (s *stubService) UpdateEvent(c *ginext.Context)          { s.mark("UpdateEvent", c) }
func (s *stubService) DeleteEvent(c *ginext.Context)          { s.mark("DeleteEvent", c) }
func (s *stubService) MyEvents(c *ginext.Context)             { s.mark("MyEvents", c) }
func (s *stubService) RegisterForEvent(c *ginext.Context)     { s.mark("RegisterForEvent", c) }
func (s *stubService) UnregisterFromEvent(c *ginext.Context)  { s.mark("UnregisterFromEvent", c) }
func (s *stubService) MyRegistrations(c *ginext.Context)      { s.mark("MyRegistrations", c) }
func (s *stubService) GetTicket(c *ginext.Context)            { s.mark("GetTicket", c) }
func (s *stubService) EventRegistrations(c *ginext.Context)   { s.mark("EventRegistrations", c) }
func (s *stubService) AttendanceStats(c *ginext.Context)      { s.mark("AttendanceStats", c) }
func (s *stubService) VerifyQR(c *ginext.Context)             { s.mark("VerifyQR", c) }
func (s *stubService) CheckInQR(c *ginext.Context)            { s.mark("CheckInQR", c) }
func (s *stubService) MarkAttended(c *ginext.Context)         { s.mark("MarkAttended", c) }
func (s *stubService) GenerateCertificates(c *ginext.Context) { s.mark("GenerateCertificates", c) }
func (s *stubService) MyCertificates(c *ginext.Context)       { s.mark("MyCertificates", c) }
func (s *stubService) DownloadCertificate(c *ginext.Context)  { s.mark("DownloadCertificate", c) }
func (s *stubService) VerifyCertificate(c *ginext.Context)    { s.mark("VerifyCertificate", c) }
func (s *stubService) ListUsers(c *ginext.Context)            { s.mark("ListUsers", c) }
func (s *stubService) UpdateUserRole(c *ginext.Context)       { s.mark("UpdateUserRole", c) }
func (s *stubService) ListAllEvents(c *ginext.Context)        { s.mark("ListAllEvents", c) }
func (s *stubService) Health(c *ginext.Context)               { s.mark("Health", c) }

func newTestRouter(t *testing.T) (*stubService, *ginext.Engine) {
	t.Helper()
	stub := &stubService{}
	return stub, NewRouters(&Routers{Service: stub, JWTSecret: testSecret})
}

func bearer(t *testing.T, role model.Role) string {
	t.Helper()
	tok, err := token.Issue(&model.User{ID: 1, Name: "Ada", Email: "ada@example.com", Role: role}, testSecret)
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(app *ginext.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestCertificateVerifyRoute(t *testing.T) {
	t.Run("public verify path", func(t *testing.T) {
		stub, app := newTestRouter(t)

		rec := do(app, http.MethodGet, "/api/certificates/7/verify", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "VerifyCertificate", stub.last)
	})

	t.Run("coexists with download", func(t *testing.T) {
		stub, app := newTestRouter(t)

		rec := do(app, http.MethodGet, "/api/certificates/7/download", bearer(t, model.RoleStudent))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "DownloadCertificate", stub.last)
	})
}

func TestMyRegistrationsRoleGate(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, app := newTestRouter(t)

		rec := do(app, http.MethodGet, "/api/users/me/registrations", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("organizer is refused", func(t *testing.T) {
		stub, app := newTestRouter(t)

		rec := do(app, http.MethodGet, "/api/users/me/registrations", bearer(t, model.RoleOrganizer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, stub.last)
	})

	t.Run("student reaches the handler", func(t *testing.T) {
		stub, app := newTestRouter(t)

		rec := do(app, http.MethodGet, "/api/users/me/registrations", bearer(t, model.RoleStudent))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "MyRegistrations", stub.last)
	})
}
