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

// NotificationRepo defines the persistence operations for feed entries.
// The table is append-only; ordering is created_at descending with the
// store-assigned seq breaking ties, so every viewer converges on the same
// order regardless of which client wrote first.
type NotificationRepo interface {
	// Create inserts a new notification and returns the persisted record.
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)

	// List returns all notifications ordered by created_at descending,
	// seq descending.
	List(ctx context.Context) ([]domain.Notification, error)
}

// pgNotificationRepo is the Postgres implementation of NotificationRepo.
type pgNotificationRepo struct {
	db db
}

// NewNotificationRepo constructs a NotificationRepo backed by the provided db connection.
func NewNotificationRepo(db db) NotificationRepo {
	return &pgNotificationRepo{db: db}
}

// Create inserts a new notification row and returns the full persisted record.
// created_at is caller-supplied so the service layer controls the time source.
func (r *pgNotificationRepo) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	const q = `
		INSERT INTO notifications (kind, title, station_name, actor_name, message, created_at)
		VALUES (@kind, @title, @station_name, @actor_name, @message, @created_at)
		RETURNING id, kind, title, station_name, actor_name, message, created_at, seq`

	args := pgx.NamedArgs{
		"kind":         string(n.Kind),
		"title":        n.Title,
		"station_name": n.StationName,
		"actor_name":   n.ActorName,
		"message":      n.Message,
		"created_at":   n.CreatedAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanNotification(row)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("repo.NotificationRepo.Create: %w", err)
	}
	return result, nil
}

// List returns all notifications, newest first.
func (r *pgNotificationRepo) List(ctx context.Context) ([]domain.Notification, error) {
	const q = `
		SELECT id, kind, title, station_name, actor_name, message, created_at, seq
		FROM notifications
		ORDER BY created_at DESC, seq DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.NotificationRepo.List: scan: %w", err)
		}
		entries = append(entries, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.NotificationRepo.List: rows: %w", err)
	}

	return entries, nil
}

// scanNotification maps a single database row into a domain.Notification.
func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n    domain.Notification
		id   pgtype.UUID
		kind string
	)

	err := s.Scan(&id, &kind, &n.Title, &n.StationName, &n.ActorName,
		&n.Message, &n.CreatedAt, &n.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Notification{}, domain.ErrNotFound
		}
		return domain.Notification{}, err
	}

	n.ID = uuid.UUID(id.Bytes)
	n.Kind = domain.NotificationKind(kind)
	return n, nil
}
