package model

import "time"

type Role string

const (
	RoleStudent   Role = "STUDENT"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// ValidRole reports whether s is one of the three known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStudent, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Event struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description,omitempty" json:"description,omitempty"`
	Date        time.Time `db:"date" json:"date"`
	Location    string    `db:"location,omitempty" json:"location,omitempty"`
	Category    string    `db:"category,omitempty" json:"category,omitempty"`
	ImageURL    string    `db:"image_url,omitempty" json:"image_url,omitempty"`
	OrganizerID int64     `db:"organizer_id" json:"organizer_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Registration struct {
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"user_id"`
	EventID      int64      `db:"event_id" json:"event_id"`
	TicketCode   string     `db:"ticket_code" json:"ticket_code"`
	QRCode       *string    `db:"qr_code" json:"qr_code,omitempty"`
	Attended     bool       `db:"attended" json:"attended"`
	CheckedInAt  *time.Time `db:"checked_in_at" json:"checked_in_at,omitempty"`
	RegisteredAt time.Time  `db:"registered_at" json:"registered_at"`
}

type Certificate struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	EventID        int64     `db:"event_id" json:"event_id"`
	CertificateURL string    `db:"certificate_url" json:"certificate_url"`
	IssuedAt       time.Time `db:"issued_at" json:"issued_at"`
}

// RegistrationDetail is a registration joined with the user it belongs to,
// the shape the organizer-facing attendance lists need.
type RegistrationDetail struct {
	Registration
	UserName  string `db:"user_name" json:"user_name"`
	UserEmail string `db:"user_email" json:"user_email"`
}

// RegistrationTicket is a registration joined with its event, the shape a
// student sees on their tickets page.
type RegistrationTicket struct {
	Registration
	EventTitle    string    `db:"event_title" json:"event_title"`
	EventDate     time.Time `db:"event_date" json:"event_date"`
	EventLocation string    `db:"event_location" json:"event_location"`
}

// CertificateDetail carries everything needed to render, mail or publicly
// verify a certificate.
type CertificateDetail struct {
	Certificate
	RecipientName  string    `db:"recipient_name" json:"recipient_name"`
	RecipientEmail string    `db:"recipient_email" json:"recipient_email"`
	EventTitle     string    `db:"event_title" json:"event_title"`
	EventDate      time.Time `db:"event_date" json:"event_date"`
	EventLocation  string    `db:"event_location" json:"event_location"`
	OrganizerID    int64     `db:"organizer_id" json:"-"`
	OrganizerName  string    `db:"organizer_name" json:"organizer_name"`
}

// EventWithStats is an event joined with its registration count, for the
// organizer dashboard.
type EventWithStats struct {
	Event
	RegistrationCount int `db:"registration_count" json:"registration_count"`
}
