package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

type UserRepo struct {
	pool *pgxpool.Pool
}

type ProfileRecord struct {
	UserID    int64
	Name      string
	Age       int
	Gender    enums.Gender
	Bio       string
	PhotoID   *string
	IsAdmin   bool
	PartnerID *int64
	CreatedAt time.Time
}

type NewProfile struct {
	UserID  int64
	Name    string
	Age     int
	Gender  enums.Gender
	Bio     string
	PhotoID *string
	IsAdmin bool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Get(ctx context.Context, userID int64) (ProfileRecord, error) {
	if userID <= 0 {
		return ProfileRecord{}, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return ProfileRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var rec ProfileRecord
	err := r.pool.QueryRow(ctx, `
SELECT user_id, name, age, gender, COALESCE(bio, ''), photo_id, is_admin, current_partner_id, created_at
FROM users
WHERE user_id = $1
`, userID).Scan(
		&rec.UserID,
		&rec.Name,
		&rec.Age,
		&rec.Gender,
		&rec.Bio,
		&rec.PhotoID,
		&rec.IsAdmin,
		&rec.PartnerID,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProfileRecord{}, ErrProfileNotFound
		}
		return ProfileRecord{}, fmt.Errorf("get profile: %w", err)
	}

	return rec, nil
}

func (r *UserRepo) Create(ctx context.Context, profile NewProfile) error {
	if profile.UserID <= 0 {
		return fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
INSERT INTO users (
	user_id,
	name,
	age,
	gender,
	bio,
	photo_id,
	is_admin,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (user_id) DO NOTHING
`, profile.UserID, profile.Name, profile.Age, string(profile.Gender), profile.Bio, profile.PhotoID, profile.IsAdmin)
	if err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileExists
	}

	return nil
}

// UpdateField writes a single profile column. The column is resolved from the
// ProfileField enum, so arbitrary column names cannot reach the query.
func (r *UserRepo) UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value any) (bool, error) {
	if userID <= 0 {
		return false, fmt.Errorf("invalid user id")
	}
	if r.pool == nil {
		return false, fmt.Errorf("postgres pool is nil")
	}

	var query string
	switch field {
	case enums.ProfileFieldName:
		query = `UPDATE users SET name = $1 WHERE user_id = $2`
	case enums.ProfileFieldAge:
		query = `UPDATE users SET age = $1 WHERE user_id = $2`
	case enums.ProfileFieldGender:
		query = `UPDATE users SET gender = $1 WHERE user_id = $2`
	case enums.ProfileFieldBio:
		query = `UPDATE users SET bio = $1 WHERE user_id = $2`
	case enums.ProfileFieldPhoto:
		query = `UPDATE users SET photo_id = $1 WHERE user_id = $2`
	case enums.ProfileFieldPartner:
		query = `UPDATE users SET current_partner_id = $1 WHERE user_id = $2`
	default:
		return false, fmt.Errorf("unsupported profile field %q", field)
	}

	tag, err := r.pool.Exec(ctx, query, value, userID)
	if err != nil {
		return false, fmt.Errorf("update profile field %s: %w", field, err)
	}

	return tag.RowsAffected() > 0, nil
}
