// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/madhouse/internal/platform/database/schema"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on admin.event.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectEvent = fmt.Sprintf(`
	SELECT %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s
	FROM %s
`,
	schema.AdminEvent.ID, schema.AdminEvent.Title, schema.AdminEvent.Slug, schema.AdminEvent.Description,
	schema.AdminEvent.Location, schema.AdminEvent.Image, schema.AdminEvent.Status, schema.AdminEvent.StartDate,
	schema.AdminEvent.EndDate, schema.AdminEvent.CreatedAt, schema.AdminEvent.UpdatedAt,
	schema.AdminEvent.Table,
)

func (repository *PostgresRepository) ListEvents(context context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	query := selectEvent + " WHERE 1=1"
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE 1=1`, schema.AdminEvent.Table)

	args := []any{}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for index, status := range filter.Statuses {
			statuses[index] = string(status)
		}
		args = append(args, statuses)
		clause := fmt.Sprintf(" AND %s = ANY($%d)", schema.AdminEvent.Status, len(args))
		query += clause
		countQuery += clause
	}

	countArgs := append([]any{}, args...)

	query += fmt.Sprintf(" ORDER BY %s DESC, %s DESC LIMIT $", schema.AdminEvent.CreatedAt, schema.AdminEvent.ID) +
		strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_events")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_events")
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_event")
		}
		events = append(events, event)
	}

	return events, total, dberr.Wrap(rows.Err(), "list_events")
}

func (repository *PostgresRepository) GetEvent(context context.Context, id int64) (*Event, error) {
	query := selectEvent + fmt.Sprintf(" WHERE %s = $1", schema.AdminEvent.ID)

	event, err := scanEvent(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_event")
	}
	return event, nil
}

func (repository *PostgresRepository) CreateEvent(context context.Context, event *Event) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.AdminEvent.Table, schema.AdminEvent.Title, schema.AdminEvent.Slug, schema.AdminEvent.Description,
		schema.AdminEvent.Location, schema.AdminEvent.Image, schema.AdminEvent.Status, schema.AdminEvent.StartDate,
		schema.AdminEvent.EndDate, schema.AdminEvent.CreatedAt, schema.AdminEvent.UpdatedAt,
		schema.AdminEvent.ID, schema.AdminEvent.CreatedAt, schema.AdminEvent.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		event.Title, event.Slug, event.Description, event.Location, event.Image,
		string(event.Status), event.StartDate, event.EndDate,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	return dberr.Wrap(err, "create_event")
}

func (repository *PostgresRepository) UpdateEvent(context context.Context, event *Event) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.AdminEvent.Table, schema.AdminEvent.Title, schema.AdminEvent.Slug, schema.AdminEvent.Description,
		schema.AdminEvent.Location, schema.AdminEvent.Image, schema.AdminEvent.Status, schema.AdminEvent.StartDate,
		schema.AdminEvent.EndDate, schema.AdminEvent.UpdatedAt, schema.AdminEvent.ID,
		schema.AdminEvent.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		event.ID, event.Title, event.Slug, event.Description, event.Location, event.Image,
		string(event.Status), event.StartDate, event.EndDate,
	).Scan(&event.UpdatedAt)

	return dberr.Wrap(err, "update_event")
}

func (repository *PostgresRepository) DeleteEvent(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.AdminEvent.Table, schema.AdminEvent.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_event")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// SweepStatuses runs both transitions in one transaction so a single sweep
// never leaves a half-applied view.
func (repository *PostgresRepository) SweepStatuses(context context.Context, now time.Time) (SweepResult, error) {
	var result SweepResult

	toOngoing := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s <= $3`,
		schema.AdminEvent.Table, schema.AdminEvent.Status, schema.AdminEvent.UpdatedAt,
		schema.AdminEvent.Status, schema.AdminEvent.StartDate,
	)
	toCompleted := fmt.Sprintf(`UPDATE %s SET %s = $1, %s = NOW() WHERE %s = $2 AND %s < $3`,
		schema.AdminEvent.Table, schema.AdminEvent.Status, schema.AdminEvent.UpdatedAt,
		schema.AdminEvent.Status, schema.AdminEvent.EndDate,
	)

	err := pgx.BeginFunc(context, repository.db, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(context, toOngoing, string(StatusOngoing), string(StatusUpcoming), now)
		if err != nil {
			return err
		}
		result.ToOngoing = cmd.RowsAffected()

		cmd, err = tx.Exec(context, toCompleted, string(StatusCompleted), string(StatusOngoing), now)
		if err != nil {
			return err
		}
		result.ToCompleted = cmd.RowsAffected()
		return nil
	})

	return result, dberr.Wrap(err, "sweep_event_statuses")
}

func scanEvent(row pgx.Row) (*Event, error) {
	event := &Event{}
	var status string

	err := row.Scan(
		&event.ID, &event.Title, &event.Slug, &event.Description, &event.Location, &event.Image,
		&status, &event.StartDate, &event.EndDate, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = Status(status)
	return event, nil
}
