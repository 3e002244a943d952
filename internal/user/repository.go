package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fkhayef/spartan/internal/database"
)

// Repository handles user data persistence
type Repository struct {
	db *database.DB
}

// NewRepository creates a new user repository with database dependency injected
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = "id, username, email, password, created_at, updated_at"

// Create inserts a new user into the database. The store assigns the id;
// timestamps are assigned here.
func (r *Repository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := r.db.Rebind(`
		INSERT INTO users (username, email, password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID. Returns nil without error when
// no row matches.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := r.db.Rebind(`
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?
	`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by their email. Returns nil without error
// when no row matches.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := r.db.Rebind(`
		SELECT ` + userColumns + `
		FROM users
		WHERE email = ?
	`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// List retrieves one page of users plus the unfiltered total count.
// sortColumn and sortDir must already be validated against the service
// whitelist; they are interpolated into the query.
func (r *Repository) List(ctx context.Context, limit, offset int, sortColumn, sortDir string) ([]*User, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM users`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := r.db.Rebind(fmt.Sprintf(`
		SELECT `+userColumns+`
		FROM users
		ORDER BY %s %s
		LIMIT ? OFFSET ?
	`, sortColumn, sortDir))

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.Password,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

// Update applies a partial update to an existing user. Only username is
// touched; email and password columns are never part of the statement.
// Returns nil without error when no row matches.
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	query := r.db.Rebind(`
		UPDATE users
		SET username = COALESCE(?, username),
		    updated_at = ?
		WHERE id = ?
		RETURNING ` + userColumns + `
	`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, req.Username, time.Now().UTC(), id))
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user and returns the row as it was immediately before
// deletion. The read and the delete share one transaction so the
// returned entity cannot be stale. Returns nil without error when no row
// matches.
func (r *Repository) Delete(ctx context.Context, id int64) (*User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	selectQuery := r.db.Rebind(`
		SELECT ` + userColumns + `
		FROM users
		WHERE id = ?
	`)

	user, err := scanUser(tx.QueryRowContext(ctx, selectQuery, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user for delete: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	deleteQuery := r.db.Rebind(`DELETE FROM users WHERE id = ?`)
	if _, err := tx.ExecContext(ctx, deleteQuery, id); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}

	return user, nil
}

// scanUser scans a single user row, mapping sql.ErrNoRows to nil.
func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
