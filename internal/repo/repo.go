package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"eventnest/internal/model"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateEmail        = errors.New("email already in use")
	ErrEventNotFound         = errors.New("event not found")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrCertificateNotFound   = errors.New("certificate not found")
	ErrDuplicateCertificate  = errors.New("duplicate certificate")
)

type Repository interface {
	// users
	CreateUser(ctx context.Context, name, email, passwordHash, role string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
	UpdateUserRole(ctx context.Context, id int64, role string) (*model.User, error)

	// events
	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetUpcomingEvents(ctx context.Context, category, search string) ([]model.Event, error)
	GetAllEvents(ctx context.Context) ([]model.Event, error)
	GetEventsByOrganizer(ctx context.Context, organizerID int64) ([]model.EventWithStats, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	DeleteEventCascadeTx(ctx context.Context, eventID int64) error

	// registrations
	CreateRegistration(ctx context.Context, userID, eventID int64, ticketCode string) (*model.Registration, error)
	GetRegistrationByPair(ctx context.Context, userID, eventID int64) (*model.Registration, error)
	GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error)
	GetRegistrationByTicket(ctx context.Context, eventID int64, ticketCode string) (*model.RegistrationDetail, error)
	GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.RegistrationDetail, error)
	GetRegistrationsByUserID(ctx context.Context, userID int64) ([]model.RegistrationTicket, error)
	UpdateRegistrationQR(ctx context.Context, id int64, qrCode string) error
	MarkCheckedInTx(ctx context.Context, id int64) (*model.Registration, error)
	DeleteRegistration(ctx context.Context, userID, eventID int64) error
	CountRegistrations(ctx context.Context, eventID int64) (int, error)
	CountCheckedIn(ctx context.Context, eventID int64) (int, error)

	// certificates
	CreateCertificate(ctx context.Context, userID, eventID int64) (*model.Certificate, error)
	UpdateCertificateURL(ctx context.Context, id int64, url string) error
	GetCertificateByID(ctx context.Context, id int64) (*model.CertificateDetail, error)
	GetCertificatesByUserID(ctx context.Context, userID int64) ([]model.CertificateDetail, error)
	GetCertifiedUserIDs(ctx context.Context, eventID int64) (map[int64]bool, error)
	GetAttendedRegistrations(ctx context.Context, eventID int64) ([]model.RegistrationDetail, error)

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}
