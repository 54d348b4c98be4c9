package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_reservations/internal/model"
	"github.com/Freeeeeet/tutor_reservations/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, telegram_id, name, email, COALESCE(role, ''), created_at`

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт нового пользователя без роли
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, telegram_id, name, email)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query, user.ID, user.TelegramID, user.Name, user.Email).Scan(&user.CreatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Пользователь не найден
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	user, err := scanUser(r.QueryRow(ctx, query, telegramID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}

	return user, nil
}

// UpdateName обновляет отображаемое имя
func (r *UserRepository) UpdateName(ctx context.Context, id, name string) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return fmt.Errorf("update user name: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// AssignRole назначает роль и создаёт профиль в одной транзакции.
// Возвращает false если роль уже была назначена или пользователя нет
func (r *UserRepository) AssignRole(ctx context.Context, id string, role model.Role) (bool, error) {
	assigned := false

	err := r.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2 AND role IS NULL`, string(role), id)
		if err != nil {
			return fmt.Errorf("update role: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		profileQuery := `INSERT INTO students (id) VALUES ($1)`
		if role == model.RoleTutor {
			profileQuery = `INSERT INTO tutors (id) VALUES ($1)`
		}
		if _, err := tx.Exec(ctx, profileQuery, id); err != nil {
			return fmt.Errorf("create %s profile: %w", role, err)
		}

		assigned = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("assign role: %w", err)
	}

	return assigned, nil
}

// GetStudentSummaries получает краткие данные студентов по списку ID
func (r *UserRepository) GetStudentSummaries(ctx context.Context, ids []string) ([]*model.StudentSummary, error) {
	if len(ids) == 0 {
		return []*model.StudentSummary{}, nil
	}

	query := `
		SELECT u.id, u.name, u.email, s.phone_number
		FROM students s
		INNER JOIN users u ON u.id = s.id
		WHERE s.id = ANY($1)
	`

	rows, err := r.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get student summaries: %w", err)
	}
	defer rows.Close()

	var students []*model.StudentSummary
	for rows.Next() {
		var student model.StudentSummary
		if err := rows.Scan(&student.ID, &student.Name, &student.Email, &student.Phone); err != nil {
			return nil, fmt.Errorf("scan student summary: %w", err)
		}
		students = append(students, &student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate student summaries: %w", err)
	}

	return students, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user model.User
		role string
	)
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Name,
		&user.Email,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}
