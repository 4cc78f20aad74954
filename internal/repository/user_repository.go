package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"commerce-backend/internal/entity"
)

const mysqlDuplicateEntry = 1062

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db}
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, registered_at, created_at, updated_at FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, name, email, password_hash, registered_at, created_at, updated_at FROM users WHERE email = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// CreateUser inserts the user. The unique index on email backs the
// uniqueness invariant; a duplicate-entry error maps to ErrEmailTaken so a
// racing second registration loses cleanly.
func (r *UserRepository) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `INSERT INTO users (id, name, email, password_hash, registered_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.RegisteredAt, user.CreatedAt, user.UpdatedAt)
	if isDuplicateEntry(err) {
		return nil, entity.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	query := `UPDATE users SET name = ?, email = ?, password_hash = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.UpdatedAt, user.ID)
	if isDuplicateEntry(err) {
		return nil, entity.ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, entity.ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes the user record. Orders keep their user reference.
func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT id, name, email, password_hash, registered_at, created_at, updated_at FROM users`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user := &entity.User{}
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
			&user.RegisteredAt, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanUser(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.RegisteredAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}
