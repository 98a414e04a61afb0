// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/madhouse/internal/platform/database/schema"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on admin.contact.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	contactColumns = strings.Join(schema.AdminContact.Columns(), ", ")
	selectContact  = fmt.Sprintf(`SELECT %s FROM %s`, contactColumns, schema.AdminContact.Table)
	likeEscaper    = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

func (repository *PostgresRepository) ListContacts(context context.Context, filter Filter, limit, offset int) ([]*Contact, int, error) {
	where := " WHERE 1=1"
	args := []any{}

	if filter.Email != "" {
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Email))+"%")
		where += fmt.Sprintf(" AND LOWER(%s) LIKE $%d", schema.AdminContact.Email, len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND %s = $%d", schema.AdminContact.Status, len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s`, schema.AdminContact.Table) + where
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_contacts")
	}

	query := selectContact + where + fmt.Sprintf(" ORDER BY %s DESC, %s DESC LIMIT $%d OFFSET $%d",
		schema.AdminContact.CreatedAt, schema.AdminContact.ID, len(args)+1, len(args)+2,
	)

	contacts, err := repository.queryContacts(context, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_contacts")
	}
	return contacts, total, nil
}

func (repository *PostgresRepository) GetContact(context context.Context, id int64) (*Contact, error) {
	query := selectContact + fmt.Sprintf(" WHERE %s = $1", schema.AdminContact.ID)

	contact, err := scanContact(repository.db.QueryRow(context, query, id))
	return contact, dberr.Wrap(err, "get_contact")
}

func (repository *PostgresRepository) FindContactByEmail(context context.Context, email string) (*Contact, error) {
	query := selectContact + fmt.Sprintf(" WHERE LOWER(%s) = LOWER($1)", schema.AdminContact.Email)

	contact, err := scanContact(repository.db.QueryRow(context, query, email))
	return contact, dberr.Wrap(err, "find_contact_by_email")
}

func (repository *PostgresRepository) CreateContact(context context.Context, contact *Contact) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s, %s
	`,
		schema.AdminContact.Table, schema.AdminContact.Email, schema.AdminContact.FirstName,
		schema.AdminContact.LastName, schema.AdminContact.Status, schema.AdminContact.CreatedAt,
		schema.AdminContact.UpdatedAt,
		schema.AdminContact.ID, schema.AdminContact.CreatedAt, schema.AdminContact.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		contact.Email, contact.FirstName, contact.LastName, string(contact.Status),
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)

	return dberr.Wrap(err, "create_contact")
}

func (repository *PostgresRepository) UpdateContact(context context.Context, contact *Contact) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.AdminContact.Table, schema.AdminContact.Email, schema.AdminContact.FirstName,
		schema.AdminContact.LastName, schema.AdminContact.Status, schema.AdminContact.UpdatedAt,
		schema.AdminContact.ID, schema.AdminContact.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		contact.ID, contact.Email, contact.FirstName, contact.LastName, string(contact.Status),
	).Scan(&contact.UpdatedAt)

	return dberr.Wrap(err, "update_contact")
}

func (repository *PostgresRepository) SetContactStatus(context context.Context, id int64, status Status) (*Contact, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1 RETURNING %s`,
		schema.AdminContact.Table, schema.AdminContact.Status, schema.AdminContact.UpdatedAt,
		schema.AdminContact.ID, contactColumns,
	)

	contact, err := scanContact(repository.db.QueryRow(context, query, id, string(status)))
	return contact, dberr.Wrap(err, "set_contact_status")
}

func (repository *PostgresRepository) DeleteContact(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.AdminContact.Table, schema.AdminContact.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_contact")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) CountActiveContacts(context context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`, schema.AdminContact.Table, schema.AdminContact.Status)

	var total int
	err := repository.db.QueryRow(context, query, string(StatusActive)).Scan(&total)
	return total, dberr.Wrap(err, "count_active_contacts")
}

func (repository *PostgresRepository) ListActiveContacts(context context.Context, afterID int64, limit int) ([]*Contact, error) {
	query := selectContact + fmt.Sprintf(" WHERE %s = $1 AND %s > $2 ORDER BY %s ASC LIMIT $3",
		schema.AdminContact.Status, schema.AdminContact.ID, schema.AdminContact.ID,
	)

	contacts, err := repository.queryContacts(context, query, string(StatusActive), afterID, limit)
	return contacts, dberr.Wrap(err, "list_active_contacts")
}

func (repository *PostgresRepository) queryContacts(context context.Context, query string, args ...any) ([]*Contact, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []*Contact{}
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, rows.Err()
}

// scanContact reads a row in [schema.AdminContactTable.Columns] order.
func scanContact(row pgx.Row) (*Contact, error) {
	contact := &Contact{}
	var status string

	err := row.Scan(
		&contact.ID, &contact.Email, &contact.FirstName, &contact.LastName,
		&status, &contact.CreatedAt, &contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	contact.Status = Status(status)
	return contact, nil
}
