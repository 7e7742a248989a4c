// Package auth implements kiosk device registration and login. A kiosk
// registers once with a name and a device key; the key is bcrypt-hashed at
// rest and every login exchanges it for a short-lived JWT.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgauth "github.com/rafaelgorayb/barduino/pkg/auth"
	"github.com/rafaelgorayb/barduino/pkg/uuid"
)

// ErrInvalidCredentials is returned by Login for any failure: unknown device
// id, wrong key, or a lookup error. A single error keeps responses from
// revealing which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidInput is returned by Register when name or key is blank.
var ErrInvalidInput = errors.New("device name and key are required")

// RegisterInput holds the data needed to enroll a kiosk device.
type RegisterInput struct {
	Name string
	Key  string
}

// LoginInput holds kiosk credentials.
type LoginInput struct {
	DeviceID string
	Key      string
}

// Result is returned after successful Register or Login. Token is a signed
// JWT carrying the device id claim.
type Result struct {
	Token    string
	DeviceID string
}

// Service defines the device authentication operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Result, error)
	Login(ctx context.Context, input LoginInput) (*Result, error)
}

type service struct {
	db *sql.DB
}

// NewService creates a Service backed by the provided DB.
func NewService(db *sql.DB) Service {
	return &service{db: db}
}

// Register enrolls a new kiosk device and returns its first JWT. The device
// key is hashed with bcrypt before storage; plaintext is never stored.
func (s *service) Register(ctx context.Context, input RegisterInput) (*Result, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || input.Key == "" {
		return nil, ErrInvalidInput
	}

	hash, err := pkgauth.HashDeviceKey(input.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to hash device key: %w", err)
	}

	deviceID := uuid.NewV7().String()
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO device (id, name, key_hash, created_at)
		VALUES (?, ?, ?, ?)
	`, deviceID, name, hash, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	token, err := pkgauth.GenerateJWT(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &Result{Token: token, DeviceID: deviceID}, nil
}

// Login verifies a device key and returns a fresh JWT. Any failure maps to
// ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, input LoginInput) (*Result, error) {
	var keyHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT key_hash FROM device WHERE id = ? LIMIT 1
	`, input.DeviceID).Scan(&keyHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !pkgauth.VerifyDeviceKey(keyHash, input.Key) {
		return nil, ErrInvalidCredentials
	}

	token, err := pkgauth.GenerateJWT(input.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate JWT: %w", err)
	}

	return &Result{Token: token, DeviceID: input.DeviceID}, nil
}
