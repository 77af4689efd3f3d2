package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/user"
	"library-circulation/pkg/id"
)

const issuer = "library-circulation"

// maxPasswordBytes is the most bcrypt will hash.
const maxPasswordBytes = 72

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid username or password")
	ErrInvalidSession     = apperr.Unauthorized("session is invalid or has expired, please log in again")
	ErrAdminOnly          = apperr.Unauthorized("only admins can create accounts with this role")
)

// SessionStore remembers revoked token ids until they would have expired.
type SessionStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Usecase struct {
	users    user.Repository
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	log      *zap.Logger
}

func NewUsecase(users user.Repository, sessions SessionStore, secret string, ttl time.Duration, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
		log:      log.Named("auth"),
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func (u *Usecase) WithHashCost(cost int) *Usecase {
	u.cost = cost
	return u
}

// Register creates a patron account. Staff roles can only be granted by an
// admin through CreateUser.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	role := actor.RoleStudent
	if in.Role != "" {
		r, ok := actor.ParseRole(in.Role)
		if !ok {
			return nil, apperr.Validation("role must be one of student, faculty, other")
		}
		role = r
	}
	if role.IsStaff() {
		return nil, ErrAdminOnly
	}
	return u.create(ctx, in, role)
}

// CreateUser lets an admin create an account with any role.
func (u *Usecase) CreateUser(ctx context.Context, a actor.Actor, in RegisterInput) (*UserDTO, error) {
	if a.Role != actor.RoleAdmin {
		return nil, ErrAdminOnly
	}
	role, ok := actor.ParseRole(in.Role)
	if !ok {
		return nil, apperr.Validation("role must be one of student, faculty, other, librarian, admin")
	}
	dto, err := u.create(ctx, in, role)
	if err != nil {
		return nil, err
	}
	u.log.Info("user created by admin",
		zap.String("actor_id", a.UserID),
		zap.String("user_id", dto.UserID),
		zap.String("role", dto.Role))
	return dto, nil
}

func (u *Usecase) create(ctx context.Context, in RegisterInput, role actor.Role) (*UserDTO, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if username == "" {
		return nil, apperr.Validation("username is required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password must be at most 72 bytes")
	}
	if in.ConfirmPassword != in.Password {
		return nil, apperr.Validation("passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	usr := &user.User{
		UserID:       id.NewID32(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
	}
	if err := u.users.Create(ctx, usr); err != nil {
		return nil, err
	}
	dto := toUserDTO(usr)
	return &dto, nil
}

// Login verifies the password and issues a signed session token.
func (u *Usecase) Login(ctx context.Context, in LoginInput) (*SessionDTO, error) {
	usr, err := u.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(in.Username)))
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := u.now()
	exp := now.Add(u.ttl)
	claims := Claims{
		Role: string(usr.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.NewID32(),
			Subject:   usr.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	u.log.Info("login", zap.String("user_id", usr.UserID), zap.String("role", string(usr.Role)))
	return &SessionDTO{
		Token:     token,
		UserID:    usr.UserID,
		Username:  usr.Username,
		Role:      string(usr.Role),
		ExpiresAt: exp.UTC().Truncate(time.Second),
	}, nil
}

// Authenticate parses a session token and returns the actor it belongs to.
func (u *Usecase) Authenticate(ctx context.Context, token string) (actor.Actor, *Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(u.now), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return actor.Actor{}, nil, ErrInvalidSession
	}
	role, ok := actor.ParseRole(claims.Role)
	if !ok || claims.Subject == "" || claims.ID == "" {
		return actor.Actor{}, nil, ErrInvalidSession
	}
	revoked, err := u.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return actor.Actor{}, nil, fmt.Errorf("check session revocation: %w", err)
	}
	if revoked {
		return actor.Actor{}, nil, ErrInvalidSession
	}
	return actor.Actor{UserID: claims.Subject, Role: role}, claims, nil
}

// Logout revokes the token for the rest of its lifetime.
func (u *Usecase) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidSession
	}
	ttl := claims.ExpiresAt.Time.Sub(u.now())
	if ttl <= 0 {
		return nil
	}
	if err := u.sessions.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	u.log.Info("logout", zap.String("user_id", claims.Subject))
	return nil
}

func (u *Usecase) Me(ctx context.Context, a actor.Actor) (*UserDTO, error) {
	usr, err := u.users.GetByUserID(ctx, a.UserID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(usr)
	return &dto, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist.
func (u *Usecase) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := u.users.GetByUsername(ctx, strings.ToLower(username))
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}
	dto, err := u.create(ctx, RegisterInput{Username: username, Password: password, ConfirmPassword: password, FullName: "Administrator"}, actor.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	u.log.Info("bootstrap admin created", zap.String("user_id", dto.UserID))
	return nil
}
