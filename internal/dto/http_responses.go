package dto

import (
	"time"

	"github.com/wb-go/wbf/ginext"

	"eventnest/internal/model"
)

const (
	FieldBadFormat     = "FIELD_BADFORMAT"
	FieldIncorrect     = "FIELD_INCORRECT"
	ServiceUnavailable = "SERVICE_UNAVAILABLE"
	InternalError      = "Service is currently unavailable. Please try again later."

	Unauthorized          = "UNAUTHORIZED"
	Forbidden             = "FORBIDDEN"
	UserNotFound          = "USER_NOT_FOUND"
	EventNotFound         = "EVENT_NOT_FOUND"
	RegistrationNotFound  = "REGISTRATION_NOT_FOUND"
	CertificateNotFound   = "CERTIFICATE_NOT_FOUND"
	TicketNotFound        = "TICKET_NOT_FOUND"
	RegistrationDuplicate = "REGISTRATION_DUPLICATE"
	EmailDuplicate        = "EMAIL_DUPLICATE"
	AlreadyCheckedIn      = "ALREADY_CHECKED_IN"
	InvalidCredentials    = "INVALID_CREDENTIALS"
)

type RegisterUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required,future"`
	Location    string    `json:"location" validate:"required"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
}

type UpdateEventRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type TicketCodeRequest struct {
	TicketCode string `json:"ticket_code" validate:"required"`
}

type VerifyTicketResponse struct {
	Valid            bool                      `json:"valid"`
	Registration     *model.RegistrationDetail `json:"registration,omitempty"`
	AlreadyCheckedIn bool                      `json:"already_checked_in"`
	CheckedInAt      *time.Time                `json:"checked_in_at,omitempty"`
}

type CheckInResponse struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message"`
	Registration *model.RegistrationDetail `json:"registration,omitempty"`
	CheckedInAt  *time.Time                `json:"checked_in_at,omitempty"`
}

type AttendanceStatsResponse struct {
	TotalRegistrations int     `json:"total_registrations"`
	CheckedIn          int     `json:"checked_in"`
	Pending            int     `json:"pending"`
	AttendanceRate     float64 `json:"attendance_rate"`
}

type GenerateCertificatesResponse struct {
	Message       string `json:"message"`
	Generated     int    `json:"generated"`
	Failed        int    `json:"failed"`
	TotalEligible int    `json:"total_eligible"`
}

type VerifyCertificateResponse struct {
	Valid       bool                       `json:"valid"`
	Message     string                     `json:"message,omitempty"`
	Certificate *PublicCertificateResponse `json:"certificate,omitempty"`
}

// PublicCertificateResponse deliberately exposes nothing beyond the
// certificate id and human-readable facts.
type PublicCertificateResponse struct {
	ID            int64     `json:"id"`
	RecipientName string    `json:"recipient_name"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Organizer     string    `json:"organizer"`
	IssuedAt      time.Time `json:"issued_at"`
}

// NotificationMessage is the payload published to RabbitMQ for the mail
// worker. Exactly one of RegistrationID / CertificateID is set.
type NotificationMessage struct {
	Kind           string `json:"kind"`
	RegistrationID int64  `json:"registration_id,omitempty"`
	CertificateID  int64  `json:"certificate_id,omitempty"`
}

const (
	KindRegistrationConfirmed = "registration_confirmed"
	KindCertificateIssued     = "certificate_issued"
)

type Response struct {
	Status string `json:"status"`
	Error  *Error `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type Error struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
}

func BadResponseError(c *ginext.Context, code, desc string) {
	c.JSON(400, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func UnauthorizedError(c *ginext.Context, desc string) {
	c.JSON(401, Response{
		Status: "error",
		Error: &Error{
			Code: Unauthorized,
			Desc: desc,
		},
	})
}

func ForbiddenError(c *ginext.Context, desc string) {
	c.JSON(403, Response{
		Status: "error",
		Error: &Error{
			Code: Forbidden,
			Desc: desc,
		},
	})
}

func NotFoundError(c *ginext.Context, code, desc string) {
	c.JSON(404, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
	})
}

func InternalServerError(c *ginext.Context) {
	c.JSON(500, Response{
		Status: "error",
		Error: &Error{
			Code: ServiceUnavailable,
			Desc: InternalError,
		},
	})
}

func EventNotFoundError(c *ginext.Context) {
	NotFoundError(c, EventNotFound, "Event not found")
}

func RegistrationNotFoundError(c *ginext.Context) {
	NotFoundError(c, RegistrationNotFound, "Registration not found")
}

func RegistrationDuplicateError(c *ginext.Context) {
	BadResponseError(c, RegistrationDuplicate, "You have already registered for this event")
}

func SuccessResponse(c *ginext.Context, data any) {
	c.JSON(200, Response{
		Status: "ok",
		Data:   data,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any) {
	c.JSON(201, Response{
		Status: "ok",
		Data:   data,
	})
}
