package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-teamwork-api/internal/models"
	"github.com/noah-isme/sma-teamwork-api/pkg/database"
)

// UserRepository reads platform users and class rosters.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.id, u.email, u.full_name, u.role, u.active, u.created_at, u.updated_at`

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 LIMIT 1`
	var user models.User
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ListClassStudents returns the active students enrolled in a class ordered
// by name.
func (r *UserRepository) ListClassStudents(ctx context.Context, classID string) ([]models.User, error) {
	query := `SELECT ` + userColumns + `
	FROM class_students cs
	JOIN users u ON u.id = cs.student_id
	WHERE cs.class_id = $1 AND u.active = TRUE AND u.role = $2
	ORDER BY u.full_name ASC, u.id ASC`
	var users []models.User
	if err := sqlx.SelectContext(ctx, database.Conn(ctx, r.db), &users, query, classID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return users, nil
}

// IsClassStudent reports whether the user is an active student of the class.
func (r *UserRepository) IsClassStudent(ctx context.Context, classID, userID string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM class_students cs JOIN users u ON u.id = cs.student_id
		WHERE cs.class_id = $1 AND cs.student_id = $2 AND u.active = TRUE AND u.role = $3)`
	var exists bool
	if err := sqlx.GetContext(ctx, database.Conn(ctx, r.db), &exists, query, classID, userID, models.RoleStudent); err != nil {
		return false, fmt.Errorf("check class student: %w", err)
	}
	return exists, nil
}
