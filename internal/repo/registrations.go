package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventnest/internal/model"
)

func (r *repository) CreateRegistration(ctx context.Context, userID, eventID int64, ticketCode string) (*model.Registration, error) {
	query := `
		INSERT INTO registrations (user_id, event_id, ticket_code)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, event_id, ticket_code, qr_code, attended, checked_in_at, registered_at
	`
	row := r.db.QueryRowContext(ctx, query, userID, eventID, ticketCode)

	var reg model.Registration
	if err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.TicketCode,
		&reg.QRCode, &reg.Attended, &reg.CheckedInAt, &reg.RegisteredAt,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRegistration
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) GetRegistrationByPair(ctx context.Context, userID, eventID int64) (*model.Registration, error) {
	query := `
		SELECT id, user_id, event_id, ticket_code, qr_code, attended, checked_in_at, registered_at
		FROM registrations
		WHERE user_id = $1 AND event_id = $2
	`
	return r.scanRegistration(r.db.QueryRowContext(ctx, query, userID, eventID))
}

func (r *repository) GetRegistrationByID(ctx context.Context, id int64) (*model.Registration, error) {
	query := `
		SELECT id, user_id, event_id, ticket_code, qr_code, attended, checked_in_at, registered_at
		FROM registrations
		WHERE id = $1
	`
	return r.scanRegistration(r.db.QueryRowContext(ctx, query, id))
}

func (r *repository) scanRegistration(row *sql.Row) (*model.Registration, error) {
	var reg model.Registration
	if err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.TicketCode,
		&reg.QRCode, &reg.Attended, &reg.CheckedInAt, &reg.RegisteredAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

// GetRegistrationByTicket resolves a ticket code scoped to one event. Ticket
// codes are not looked up globally.
func (r *repository) GetRegistrationByTicket(ctx context.Context, eventID int64, ticketCode string) (*model.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_code, r.qr_code,
		       r.attended, r.checked_in_at, r.registered_at,
		       u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1 AND r.ticket_code = $2
	`
	row := r.db.QueryRowContext(ctx, query, eventID, ticketCode)

	var d model.RegistrationDetail
	if err := row.Scan(
		&d.ID, &d.UserID, &d.EventID, &d.TicketCode, &d.QRCode,
		&d.Attended, &d.CheckedInAt, &d.RegisteredAt,
		&d.UserName, &d.UserEmail,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration by ticket: %w", err)
	}
	return &d, nil
}

func (r *repository) GetRegistrationsByEventID(ctx context.Context, eventID int64) ([]model.RegistrationDetail, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_code, r.qr_code,
		       r.attended, r.checked_in_at, r.registered_at,
		       u.name, u.email
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = $1
		ORDER BY r.registered_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
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
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, d)
	}

	return regs, rows.Err()
}

func (r *repository) GetRegistrationsByUserID(ctx context.Context, userID int64) ([]model.RegistrationTicket, error) {
	query := `
		SELECT r.id, r.user_id, r.event_id, r.ticket_code, r.qr_code,
		       r.attended, r.checked_in_at, r.registered_at,
		       e.title, e.date, e.location
		FROM registrations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = $1
		ORDER BY e.date ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.RegistrationTicket
	for rows.Next() {
		var t model.RegistrationTicket
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.EventID, &t.TicketCode, &t.QRCode,
			&t.Attended, &t.CheckedInAt, &t.RegisteredAt,
			&t.EventTitle, &t.EventDate, &t.EventLocation,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user registration: %w", err)
		}
		regs = append(regs, t)
	}

	return regs, rows.Err()
}

func (r *repository) UpdateRegistrationQR(ctx context.Context, id int64, qrCode string) error {
	query := `
		UPDATE registrations
		SET qr_code = $1
		WHERE id = $2
		RETURNING id
	`

	var got int64
	if err := r.db.QueryRowContext(ctx, query, qrCode, id).Scan(&got); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRegistrationNotFound
		}
		return fmt.Errorf("failed to update registration qr code: %w", err)
	}
	return nil
}

// MarkCheckedInTx flips attended under a row lock so the first check-in wins
// and the stored timestamp never changes afterwards.
func (r *repository) MarkCheckedInTx(ctx context.Context, id int64) (*model.Registration, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	var attended bool
	err = tx.QueryRowContext(ctx, `
		SELECT attended FROM registrations WHERE id = $1 FOR UPDATE
	`, id).Scan(&attended)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to lock registration: %w", err)
	}

	var reg model.Registration
	row := tx.QueryRowContext(ctx, `
		UPDATE registrations
		SET attended = TRUE,
		    checked_in_at = COALESCE(checked_in_at, NOW())
		WHERE id = $1
		RETURNING id, user_id, event_id, ticket_code, qr_code, attended, checked_in_at, registered_at
	`, id)
	if err := row.Scan(
		&reg.ID, &reg.UserID, &reg.EventID, &reg.TicketCode,
		&reg.QRCode, &reg.Attended, &reg.CheckedInAt, &reg.RegisteredAt,
	); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to mark registration checked in: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &reg, nil
}

func (r *repository) DeleteRegistration(ctx context.Context, userID, eventID int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM registrations WHERE user_id = $1 AND event_id = $2
	`, userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}

func (r *repository) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations WHERE event_id = $1
	`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *repository) CountCheckedIn(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND attended = TRUE
	`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count checked-in registrations: %w", err)
	}
	return count, nil
}
