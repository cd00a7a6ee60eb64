package service

import (
	"strconv"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/certificate"
	"eventnest/internal/registration"
	"eventnest/internal/repo"
	"eventnest/internal/token"
)

// UserContextKey is where the auth middleware stores the caller.
const UserContextKey = "user"

type Service interface {
	// auth
	Register(ctx *ginext.Context)
	Login(ctx *ginext.Context)
	Me(ctx *ginext.Context)

	// events
	ListEvents(ctx *ginext.Context)
	GetEvent(ctx *ginext.Context)
	CreateEvent(ctx *ginext.Context)
	UpdateEvent(ctx *ginext.Context)
	DeleteEvent(ctx *ginext.Context)
	MyEvents(ctx *ginext.Context)

	// registrations
	RegisterForEvent(ctx *ginext.Context)
	UnregisterFromEvent(ctx *ginext.Context)
	MyRegistrations(ctx *ginext.Context)
	GetTicket(ctx *ginext.Context)
	EventRegistrations(ctx *ginext.Context)
	AttendanceStats(ctx *ginext.Context)
	VerifyQR(ctx *ginext.Context)
	CheckInQR(ctx *ginext.Context)
	MarkAttended(ctx *ginext.Context)

	// certificates
	GenerateCertificates(ctx *ginext.Context)
	MyCertificates(ctx *ginext.Context)
	DownloadCertificate(ctx *ginext.Context)
	VerifyCertificate(ctx *ginext.Context)

	// admin
	ListUsers(ctx *ginext.Context)
	UpdateUserRole(ctx *ginext.Context)
	ListAllEvents(ctx *ginext.Context)

	Health(ctx *ginext.Context)
}

type service struct {
	repo          repo.Repository
	log           *zerolog.Logger
	registrations *registration.Manager
	certificates  *certificate.Manager
	jwtSecret     string
}

func NewService(
	repo repo.Repository,
	log *zerolog.Logger,
	registrations *registration.Manager,
	certificates *certificate.Manager,
	jwtSecret string,
) Service {
	return &service{
		repo:          repo,
		log:           log,
		registrations: registrations,
		certificates:  certificates,
		jwtSecret:     jwtSecret,
	}
}

func (s *service) Health(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"status": "ok"})
}

// currentUser returns the caller placed in the context by the auth
// middleware. Routes behind the middleware always have one.
func currentUser(ctx *ginext.Context) *token.UserContext {
	v, ok := ctx.Get(UserContextKey)
	if !ok {
		return nil
	}
	uc, ok := v.(*token.UserContext)
	if !ok {
		return nil
	}
	return uc
}

func pathID(ctx *ginext.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
