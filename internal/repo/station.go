// Package repo contains all database access logic for the PatiMap backend.
// Each resource has its own file with an interface and a Postgres
// implementation. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/patimap/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StationRepo defines the persistence operations for feeding stations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the registry to be unit-tested with a mock.
type StationRepo interface {
	// Create inserts a new station and returns the persisted record (with
	// DB-generated id and created_at populated).
	Create(ctx context.Context, station domain.Station) (domain.Station, error)

	// GetByID retrieves a single station by its UUID primary key.
	// Returns domain.ErrNotFound if no station with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error)

	// List returns all stations. Order is irrelevant to callers — the map
	// renders them as independent markers.
	List(ctx context.Context) ([]domain.Station, error)

	// Delete removes a station by ID. Help events and notifications that
	// reference it are deliberately left in place; they carry their own
	// station name snapshots. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgStationRepo is the Postgres implementation of StationRepo.
type pgStationRepo struct {
	db db
}

// NewStationRepo constructs a StationRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStationRepo(db db) StationRepo {
	return &pgStationRepo{db: db}
}

// Create inserts a new station row and returns the full persisted record.
func (r *pgStationRepo) Create(ctx context.Context, station domain.Station) (domain.Station, error) {
	const q = `
		INSERT INTO stations (name, latitude, longitude, area, status)
		VALUES (@name, @latitude, @longitude, @area, @status)
		RETURNING id, name, latitude, longitude, area, status, created_at`

	args := pgx.NamedArgs{
		"name":      station.Name,
		"latitude":  station.Latitude,
		"longitude": station.Longitude,
		"area":      station.Area,
		"status":    station.Status,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanStation(row)
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a station by primary key.
func (r *pgStationRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Station, error) {
	const q = `
		SELECT id, name, latitude, longitude, area, status, created_at
		FROM stations
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanStation(row)
	if err != nil {
		return domain.Station{}, fmt.Errorf("repo.StationRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all stations.
func (r *pgStationRepo) List(ctx context.Context) ([]domain.Station, error) {
	const q = `
		SELECT id, name, latitude, longitude, area, status, created_at
		FROM stations`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.StationRepo.List: %w", err)
	}
	defer rows.Close()

	var stations []domain.Station
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StationRepo.List: scan: %w", err)
		}
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StationRepo.List: rows: %w", err)
	}

	return stations, nil
}

// Delete removes a station by primary key.
func (r *pgStationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM stations WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.StationRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.StationRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanStation maps a single database row into a domain.Station.
func scanStation(s scanner) (domain.Station, error) {
	var (
		station domain.Station
		id      pgtype.UUID
	)

	err := s.Scan(&id, &station.Name, &station.Latitude, &station.Longitude,
		&station.Area, &station.Status, &station.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Station{}, domain.ErrNotFound
		}
		return domain.Station{}, err
	}

	station.ID = uuid.UUID(id.Bytes)
	return station, nil
}
