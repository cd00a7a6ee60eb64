package api

import (
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"

	"eventnest/cmd/middleware"
	"eventnest/internal/policy"
	"eventnest/internal/service"
)

type Routers struct {
	Service   service.Service
	JWTSecret string
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	app.GET("/health", r.Service.Health)

	apiGroup := app.Group("/api")

	auth := middleware.Auth(r.JWTSecret)

	// public
	apiGroup.POST("/auth/register", r.Service.Register)
	apiGroup.POST("/auth/login", r.Service.Login)
	apiGroup.GET("/events", r.Service.ListEvents)
	apiGroup.GET("/events/:id", r.Service.GetEvent)
	apiGroup.GET("/certificates/:id/verify", r.Service.VerifyCertificate)

	// any authenticated user
	apiGroup.GET("/auth/me", auth, r.Service.Me)
	apiGroup.GET("/users/me/registrations", auth,
		middleware.Authorize(policy.ActionViewOwnRegistrations), r.Service.MyRegistrations)
	apiGroup.GET("/users/me/certificates", auth, r.Service.MyCertificates)
	apiGroup.GET("/registrations/:id/ticket", auth, r.Service.GetTicket)
	apiGroup.GET("/certificates/:id/download", auth, r.Service.DownloadCertificate)

	// students register themselves
	apiGroup.POST("/events/:id/register", auth,
		middleware.Authorize(policy.ActionRegisterForEvent), r.Service.RegisterForEvent)
	apiGroup.DELETE("/events/:id/register", auth,
		middleware.Authorize(policy.ActionRegisterForEvent), r.Service.UnregisterFromEvent)

	// organizer surface; handlers additionally check event ownership
	manage := middleware.Authorize(policy.ActionManageOwnEvents)
	apiGroup.POST("/events", auth, manage, r.Service.CreateEvent)
	apiGroup.PUT("/events/:id", auth, manage, r.Service.UpdateEvent)
	apiGroup.DELETE("/events/:id", auth, manage, r.Service.DeleteEvent)
	apiGroup.GET("/users/me/events", auth, manage, r.Service.MyEvents)
	apiGroup.GET("/events/:id/registrations", auth, manage, r.Service.EventRegistrations)
	apiGroup.GET("/events/:id/attendance-stats", auth, manage, r.Service.AttendanceStats)

	checkin := middleware.Authorize(policy.ActionPerformCheckIn)
	apiGroup.POST("/events/:id/verify-qr", auth, checkin, r.Service.VerifyQR)
	apiGroup.POST("/events/:id/checkin-qr", auth, checkin, r.Service.CheckInQR)
	apiGroup.POST("/registrations/:id/attend", auth, checkin, r.Service.MarkAttended)

	apiGroup.POST("/events/:id/generate-certificates", auth,
		middleware.Authorize(policy.ActionGenerateCertificates), r.Service.GenerateCertificates)

	// admin
	apiGroup.GET("/admin/users", auth,
		middleware.Authorize(policy.ActionAdministerUsers), r.Service.ListUsers)
	apiGroup.PUT("/admin/users/:id/role", auth,
		middleware.Authorize(policy.ActionAdministerUsers), r.Service.UpdateUserRole)
	apiGroup.GET("/admin/events", auth,
		middleware.Authorize(policy.ActionAdministerEvents), r.Service.ListAllEvents)

	return app
}
