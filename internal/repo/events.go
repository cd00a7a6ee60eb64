package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventnest/internal/model"
)

const eventColumns = `id, title, description, date, location, category, image_url, organizer_id, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }, e *model.Event) error {
	return row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Location,
		&e.Category, &e.ImageURL, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
	)
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (title, description, date, location, category, image_url, organizer_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.Category, e.ImageURL, e.OrganizerID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var e model.Event
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

// GetUpcomingEvents lists events dated now or later, optionally narrowed by
// category and a title/description search term.
func (r *repository) GetUpcomingEvents(ctx context.Context, category, search string) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE date >= NOW()`
	args := []any{}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d)", n, n)
	}
	query += " ORDER BY date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *repository) GetAllEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := scanEvent(rows, &e); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *repository) GetEventsByOrganizer(ctx context.Context, organizerID int64) ([]model.EventWithStats, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.location, e.category,
		       e.image_url, e.organizer_id, e.created_at, e.updated_at,
		       COUNT(r.id) AS registration_count
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		WHERE e.organizer_id = $1
		GROUP BY e.id
		ORDER BY e.date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get organizer events: %w", err)
	}
	defer rows.Close()

	var events []model.EventWithStats
	for rows.Next() {
		var e model.EventWithStats
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Location, &e.Category,
			&e.ImageURL, &e.OrganizerID, &e.CreatedAt, &e.UpdatedAt,
			&e.RegistrationCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan organizer event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

func (r *repository) UpdateEvent(ctx context.Context, e *model.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, date = $3, location = $4,
		    category = $5, image_url = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Location, e.Category, e.ImageURL, e.ID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEventCascadeTx removes an event together with its registrations and
// certificates in a single transaction.
func (r *repository) DeleteEventCascadeTx(ctx context.Context, eventID int64) error {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM certificates WHERE event_id = $1`, eventID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event certificates: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = $1`, eventID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event registrations: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		_ = tx.Rollback()
		return ErrEventNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
