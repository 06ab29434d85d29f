package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/patimap/backend/internal/domain"
)

// HelpEventRepo defines the persistence operations for help deliveries.
// Help events are append-only: no update or delete exists.
type HelpEventRepo interface {
	// Create inserts a new help event and returns the persisted record.
	Create(ctx context.Context, event domain.HelpEvent) (domain.HelpEvent, error)

	// ListByStation returns all help events recorded against a station,
	// newest first. The station itself may already be deleted; events
	// reference it weakly.
	ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.HelpEvent, error)
}

// pgHelpEventRepo is the Postgres implementation of HelpEventRepo.
type pgHelpEventRepo struct {
	db db
}

// NewHelpEventRepo constructs a HelpEventRepo backed by the provided db connection.
func NewHelpEventRepo(db db) HelpEventRepo {
	return &pgHelpEventRepo{db: db}
}

// Create inserts a new help event row and returns the full persisted record.
// created_at is caller-supplied so the service layer controls the time source.
func (r *pgHelpEventRepo) Create(ctx context.Context, event domain.HelpEvent) (domain.HelpEvent, error) {
	const q = `
		INSERT INTO help_events (station_id, station_name, kind, actor_name, created_at)
		VALUES (@station_id, @station_name, @kind, @actor_name, @created_at)
		RETURNING id, station_id, station_name, kind, actor_name, created_at, seq`

	args := pgx.NamedArgs{
		"station_id":   event.StationID,
		"station_name": event.StationName,
		"kind":         string(event.Kind),
		"actor_name":   event.ActorName,
		"created_at":   event.CreatedAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanHelpEvent(row)
	if err != nil {
		return domain.HelpEvent{}, fmt.Errorf("repo.HelpEventRepo.Create: %w", err)
	}
	return result, nil
}

// ListByStation returns all help events for a station, newest first.
func (r *pgHelpEventRepo) ListByStation(ctx context.Context, stationID uuid.UUID) ([]domain.HelpEvent, error) {
	const q = `
		SELECT id, station_id, station_name, kind, actor_name, created_at, seq
		FROM help_events
		WHERE station_id = @station_id
		ORDER BY created_at DESC, seq DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"station_id": stationID})
	if err != nil {
		return nil, fmt.Errorf("repo.HelpEventRepo.ListByStation: %w", err)
	}
	defer rows.Close()

	var events []domain.HelpEvent
	for rows.Next() {
		e, err := scanHelpEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.HelpEventRepo.ListByStation: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.HelpEventRepo.ListByStation: rows: %w", err)
	}

	return events, nil
}

// scanHelpEvent maps a single database row into a domain.HelpEvent.
func scanHelpEvent(s scanner) (domain.HelpEvent, error) {
	var (
		event     domain.HelpEvent
		id        pgtype.UUID
		stationID pgtype.UUID
		kind      string
	)

	err := s.Scan(&id, &stationID, &event.StationName, &kind,
		&event.ActorName, &event.CreatedAt, &event.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HelpEvent{}, domain.ErrNotFound
		}
		return domain.HelpEvent{}, err
	}

	event.ID = uuid.UUID(id.Bytes)
	event.StationID = uuid.UUID(stationID.Bytes)
	event.Kind = domain.HelpKind(kind)
	return event, nil
}
