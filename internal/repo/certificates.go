package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventnest/internal/model"
)

func (r *repository) CreateCertificate(ctx context.Context, userID, eventID int64) (*model.Certificate, error) {
	query := `
		INSERT INTO certificates (user_id, event_id, certificate_url)
		VALUES ($1, $2, '')
		RETURNING id, user_id, event_id, certificate_url, issued_at
	`
	row := r.db.QueryRowContext(ctx, query, userID, eventID)

	var c model.Certificate
	if err := row.Scan(&c.ID, &c.UserID, &c.EventID, &c.CertificateURL, &c.IssuedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateCertificate
		}
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	return &c, nil
}

func (r *repository) UpdateCertificateURL(ctx context.Context, id int64, url string) error {
	var got int64
	err := r.db.QueryRowContext(ctx, `
		UPDATE certificates SET certificate_url = $1 WHERE id = $2 RETURNING id
	`, url, id).Scan(&got)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCertificateNotFound
		}
		return fmt.Errorf("failed to update certificate url: %w", err)
	}
	return nil
}

const certificateDetailQuery = `
	SELECT c.id, c.user_id, c.event_id, c.certificate_url, c.issued_at,
	       u.name, u.email,
	       e.title, e.date, e.location, e.organizer_id,
	       o.name
	FROM certificates c
	JOIN users u ON u.id = c.user_id
	JOIN events e ON e.id = c.event_id
	JOIN users o ON o.id = e.organizer_id
`

func scanCertificateDetail(row interface{ Scan(...any) error }, d *model.CertificateDetail) error {
	return row.Scan(
		&d.ID, &d.UserID, &d.EventID, &d.CertificateURL, &d.IssuedAt,
		&d.RecipientName, &d.RecipientEmail,
		&d.EventTitle, &d.EventDate, &d.EventLocation, &d.OrganizerID,
		&d.OrganizerName,
	)
}

func (r *repository) GetCertificateByID(ctx context.Context, id int64) (*model.CertificateDetail, error) {
	row := r.db.QueryRowContext(ctx, certificateDetailQuery+` WHERE c.id = $1`, id)

	var d model.CertificateDetail
	if err := scanCertificateDetail(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return &d, nil
}

func (r *repository) GetCertificatesByUserID(ctx context.Context, userID int64) ([]model.CertificateDetail, error) {
	rows, err := r.db.QueryContext(ctx, certificateDetailQuery+` WHERE c.user_id = $1 ORDER BY c.issued_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user certificates: %w", err)
	}
	defer rows.Close()

	var certs []model.CertificateDetail
	for rows.Next() {
		var d model.CertificateDetail
		if err := scanCertificateDetail(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, d)
	}

	return certs, rows.Err()
}

// GetCertifiedUserIDs returns the set of users already holding a certificate
// for the event.
func (r *repository) GetCertifiedUserIDs(ctx context.Context, eventID int64) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id FROM certificates WHERE event_id = $1
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get certified users: %w", err)
	}
	defer rows.Close()

	certified := make(map[int64]bool)
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan certified user: %w", err)
		}
		certified[userID] = true
	}

	return certified, rows.Err()
}

// GetAttendedRegistrations lists the checked-in registrations for an event
// together with the attendee, the certificate-eligibility source set.
func (r *repository) GetAttendedRegistrations(ctx context.Context, eventID int64) ([]model.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_code, r.qr_code,
		       r.attended, r.checked_in_at, r.registered_at,
		       u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.attended = TRUE
		ORDER BY r.registered_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attended registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.RegistrationDetail
	for rows.Next() {
		var d model.RegistrationDetail
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.EventID, &d.TicketCode, &d.QRCode,
			&d.Attended, &d.CheckedInAt, &d.RegisteredAt,
			&d.UserName, &d.UserEmail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attended registration: %w", err)
		}
		regs = append(regs, d)
	}

	return regs, rows.Err()
}
