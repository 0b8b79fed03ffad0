package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/coldmail-tracker/internal/errors"
	"github.com/unclebandit/coldmail-tracker/internal/model"
)

// EmailRepositoryInterface is the record store the service depends on.
type EmailRepositoryInterface interface {
	ListAll(ctx context.Context) ([]model.Email, error)
	ListByStatus(ctx context.Context, status string) ([]model.Email, error)
	GetByID(ctx context.Context, id string) (*model.Email, error)
	Create(ctx context.Context, e *model.Email) error
	Update(ctx context.Context, id string, u model.EmailUpdate) (*model.Email, error)
	Delete(ctx context.Context, id string) error
}

type EmailRepository struct {
	DB *sql.DB
}

const emailColumns = `id, recipient_name, recipient_email, company, subject, notes,
        to_char(follow_up_date, 'YYYY-MM-DD'), status, opened, replied, followed_up,
        linkedin, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner, e *model.Email) error {
	return row.Scan(
		&e.ID, &e.RecipientName, &e.RecipientEmail, &e.Company, &e.Subject, &e.Notes,
		&e.FollowUpDate, &e.Status, &e.Opened, &e.Replied, &e.FollowedUp,
		&e.LinkedIn, &e.CreatedAt, &e.UpdatedAt,
	)
}

// ====================== Reads ======================

func (r *EmailRepository) ListAll(ctx context.Context) ([]model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails ORDER BY created_at DESC`
	emails, err := r.list(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return emails, nil
}

// ListByStatus is a raw equality match on the stored status column.
func (r *EmailRepository) ListByStatus(ctx context.Context, status string) ([]model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE status = $1 ORDER BY created_at DESC`
	emails, err := r.list(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("filter emails: %w", err)
	}
	return emails, nil
}

func (r *EmailRepository) list(ctx context.Context, query string, args ...any) ([]model.Email, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []model.Email{}
	for rows.Next() {
		var e model.Email
		if err := scanEmail(rows, &e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *EmailRepository) GetByID(ctx context.Context, id string) (*model.Email, error) {
	// a malformed id cannot match any row; don't let Postgres turn it into a 500
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewEmailNotFound(id)
	}

	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`
	var e model.Email
	if err := scanEmail(r.DB.QueryRowContext(ctx, query, id), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewEmailNotFound(id)
		}
		return nil, fmt.Errorf("get email: %w", err)
	}
	return &e, nil
}

// ====================== Writes ======================

// Create inserts e and fills in the store-generated id and timestamps.
func (r *EmailRepository) Create(ctx context.Context, e *model.Email) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
        INSERT INTO emails
            (id, recipient_name, recipient_email, company, subject, notes,
             follow_up_date, status, opened, replied, followed_up, linkedin,
             created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
        RETURNING created_at, updated_at
    `
	err := r.DB.QueryRowContext(ctx, query,
		e.ID, e.RecipientName, e.RecipientEmail, e.Company, e.Subject, e.Notes,
		e.FollowUpDate, e.Status, e.Opened, e.Replied, e.FollowedUp, e.LinkedIn,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create email: %w", err)
	}
	return nil
}

// Update writes only the fields set in u and returns the updated row.
func (r *EmailRepository) Update(ctx context.Context, id string, u model.EmailUpdate) (*model.Email, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.NewEmailNotFound(id)
	}

	sets := []string{}
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.RecipientName.Set {
		add("recipient_name", u.RecipientName.Arg())
	}
	if u.RecipientEmail.Set {
		add("recipient_email", u.RecipientEmail.Arg())
	}
	if u.Company.Set {
		add("company", u.Company.Arg())
	}
	if u.Subject.Set {
		add("subject", u.Subject.Arg())
	}
	if u.Notes.Set {
		add("notes", u.Notes.Arg())
	}
	if u.FollowUpDate.Set {
		add("follow_up_date", u.FollowUpDate.Arg())
	}
	if u.LinkedIn.Set {
		add("linkedin", u.LinkedIn.Arg())
	}
	if u.Status.Set {
		add("status", u.Status.Arg())
	}
	if u.Opened.Set {
		add("opened", u.Opened.Value)
	}
	if u.Replied.Set {
		add("replied", u.Replied.Value)
	}
	if u.FollowedUp.Set {
		add("followed_up", u.FollowedUp.Value)
	}

	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	add("updated_at", updatedAt)

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE emails SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), emailColumns)

	var e model.Email
	if err := scanEmail(r.DB.QueryRowContext(ctx, query, args...), &e); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewEmailNotFound(id)
		}
		return nil, fmt.Errorf("update email: %w", err)
	}
	return &e, nil
}

// Delete removes the row. Deleting a missing id is not an error.
func (r *EmailRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM emails WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete email: %w", err)
	}
	return nil
}

var _ EmailRepositoryInterface = (*EmailRepository)(nil)
