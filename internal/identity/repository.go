package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tangent-app/tangent/internal/kyc"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByPhone(ctx context.Context, phone string) (User, error)
	UpdateDevice(ctx context.Context, id, deviceID string) error
	UpdateTokenVersion(ctx context.Context, id string, version int) error
	UpdatePIN(ctx context.Context, id string, hash []byte, at time.Time) error
	UpdatePhone(ctx context.Context, id, phone string, verifiedAt time.Time) error
	UpdateAddress(ctx context.Context, id string, addr Address) error
	UpdateNotifications(ctx context.Context, id string, push, marketing bool) error
	UpdateKYC(ctx context.Context, id string, status kyc.Status, tier string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, auth_provider, google_id, full_name, username, date_of_birth,
        street, city, state, zip_code, country, phone_number, phone_country_code, phone_verified,
        phone_verified_at, pin_hash, pin_set_at, device_id, token_version, tier, kyc_status,
        onboarding_status, onboarding_completed_steps, notifications_enabled, marketing_emails_enabled,
        preferred_language, account_status, created_at, updated_at, last_login_at`

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)`,
		userID, nullable(user.Email), user.AuthProvider, nullable(user.GoogleID), user.FullName, nullable(user.Username), user.DateOfBirth,
		user.Address.Street, user.Address.City, user.Address.State, user.Address.ZIPCode, user.Address.Country,
		user.PhoneNumber, user.PhoneCountryCode, user.PhoneVerified, user.PhoneVerifiedAt, user.PINHash, user.PINSetAt,
		user.DeviceID, user.TokenVersion, user.Tier, string(user.KYCStatus), user.OnboardingStatus, user.OnboardingCompletedSteps,
		user.NotificationsEnabled, user.MarketingEmailsEnabled, user.PreferredLanguage, user.AccountStatus,
		user.CreatedAt.UTC(), user.UpdatedAt.UTC(), user.LastLoginAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, constraintName(err))
	}
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindByPhone fetches a user by E.164 phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	return r.scanOne(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone_number = $1`, phone))
}

func (r *PostgresRepository) scanOne(row pgx.Row) (User, error) {
	var (
		id                        uuid.UUID
		email, googleID, username *string
		kycStatus                 string
		user                      User
	)
	err := row.Scan(&id, &email, &user.AuthProvider, &googleID, &user.FullName, &username, &user.DateOfBirth,
		&user.Address.Street, &user.Address.City, &user.Address.State, &user.Address.ZIPCode, &user.Address.Country,
		&user.PhoneNumber, &user.PhoneCountryCode, &user.PhoneVerified, &user.PhoneVerifiedAt, &user.PINHash, &user.PINSetAt,
		&user.DeviceID, &user.TokenVersion, &user.Tier, &kycStatus, &user.OnboardingStatus, &user.OnboardingCompletedSteps,
		&user.NotificationsEnabled, &user.MarketingEmailsEnabled, &user.PreferredLanguage, &user.AccountStatus,
		&user.CreatedAt, &user.UpdatedAt, &user.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.Email = deref(email)
	user.GoogleID = deref(googleID)
	user.Username = deref(username)
	user.KYCStatus = kyc.Status(kycStatus)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}

// UpdateDevice stores the users bound device identifier.
func (r *PostgresRepository) UpdateDevice(ctx context.Context, id, deviceID string) error {
	return r.update(ctx, id, `UPDATE users SET device_id = $1, updated_at = now() WHERE id = $2`, deviceID)
}

// UpdateTokenVersion replaces the token version, invalidating older tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	return r.update(ctx, id, `UPDATE users SET token_version = $1, updated_at = now() WHERE id = $2`, version)
}

// UpdatePIN stores a new PIN hash.
func (r *PostgresRepository) UpdatePIN(ctx context.Context, id string, hash []byte, at time.Time) error {
	return r.update(ctx, id, `UPDATE users SET pin_hash = $1, pin_set_at = $2, updated_at = now() WHERE id = $3`, hash, at.UTC())
}

// UpdatePhone stores a verified phone number.
func (r *PostgresRepository) UpdatePhone(ctx context.Context, id, phone string, verifiedAt time.Time) error {
	err := r.update(ctx, id, `UPDATE users SET phone_number = $1, phone_verified = TRUE, phone_verified_at = $2, updated_at = now() WHERE id = $3`, phone, verifiedAt.UTC())
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicate, constraintName(err))
	}
	return err
}

// UpdateAddress replaces the home address.
func (r *PostgresRepository) UpdateAddress(ctx context.Context, id string, addr Address) error {
	return r.update(ctx, id, `UPDATE users SET street = $1, city = $2, state = $3, zip_code = $4, country = $5, updated_at = now() WHERE id = $6`,
		addr.Street, addr.City, addr.State, addr.ZIPCode, addr.Country)
}

// UpdateNotifications stores notification preferences.
func (r *PostgresRepository) UpdateNotifications(ctx context.Context, id string, push, marketing bool) error {
	return r.update(ctx, id, `UPDATE users SET notifications_enabled = $1, marketing_emails_enabled = $2, updated_at = now() WHERE id = $3`, push, marketing)
}

// UpdateKYC stores the verification status and resulting tier.
func (r *PostgresRepository) UpdateKYC(ctx context.Context, id string, status kyc.Status, tier string) error {
	return r.update(ctx, id, `UPDATE users SET kyc_status = $1, tier = $2, updated_at = now() WHERE id = $3`, string(status), tier)
}

// TouchLogin records the last successful login.
func (r *PostgresRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at.UTC())
}

// update runs query with args followed by the parsed user id.
func (r *PostgresRepository) update(ctx context.Context, id, query string, args ...any) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, append(args, userID)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
