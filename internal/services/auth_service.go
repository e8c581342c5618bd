package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	intconfig "hajjumrahflow/internal/config"
	intdb "hajjumrahflow/internal/db"
	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/domain/models"
	"hajjumrahflow/internal/repositories"
	"hajjumrahflow/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const TokenTTL = 24 * time.Hour

const MsgBadCredentials = "Unable to log in with provided credentials."

// Claims is the JWT body issued by Authenticate.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is returned by POST /auth/token.
type TokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// UserInput creates a staff account.
type UserInput struct {
	Username  string      `json:"username" validate:"required,max=150"`
	Email     string      `json:"email" validate:"omitempty,email"`
	FirstName string      `json:"first_name" validate:"max=150"`
	LastName  string      `json:"last_name" validate:"max=150"`
	Password  string      `json:"password" validate:"required,min=8"`
	Role      domain.Role `json:"role" validate:"required"`
}

type AuthService struct {
	DB        *sql.DB
	Secret    []byte
	RequestID string
	Now       func() time.Time
}

func (s AuthService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s AuthService) users() repositories.UserRepository {
	return repositories.UserRepository{DB: s.db()}
}

// Authenticate checks a username (or email) and password pair.
func (s AuthService) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return models.User{}, domain.UnauthorizedError{Msg: MsgBadCredentials}
	}
	u, err := s.users().GetByLogin(ctx, login)
	if err != nil {
		if domain.IsNotFound(err) {
			utils.LogEvent(s.RequestID, "auth", "login_failed", "login="+login)
			return models.User{}, domain.UnauthorizedError{Msg: MsgBadCredentials}
		}
		return models.User{}, err
	}
	if !u.IsActive || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "login_failed", "login="+login)
		return models.User{}, domain.UnauthorizedError{Msg: MsgBadCredentials}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return u, nil
}

// Login authenticates and issues a bearer token in one step.
func (s AuthService) Login(ctx context.Context, login, password string) (TokenResponse, error) {
	u, err := s.Authenticate(ctx, login, password)
	if err != nil {
		return TokenResponse{}, err
	}
	token, exp, err := s.IssueToken(u)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s AuthService) IssueToken(u models.User) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, domain.InternalError{Msg: "signing key not configured"}
	}
	now := nowOr(s.Now)
	exp := now.Add(TokenTTL)
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	return signed, exp, nil
}

// ParseToken verifies a bearer token and returns the actor it names.
func (s AuthService) ParseToken(raw string) (domain.Actor, error) {
	var claims Claims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(s.Now))
	}
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, opts...)
	if err != nil {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "Invalid or expired token."}
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 || !claims.Role.Valid() {
		return domain.Actor{}, domain.UnauthorizedError{Msg: "Invalid or expired token."}
	}
	return domain.Actor{UserID: id, Role: claims.Role}, nil
}

// CreateUser hashes the password and stores a new active staff user.
func (s AuthService) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateStruct(in); err != nil {
		return models.User{}, err
	}
	if !in.Role.Valid() {
		return models.User{}, domain.ValidationError{Field: "role", Code: "invalid_choice", Msg: fmt.Sprintf("\"%s\" is not a valid choice.", in.Role)}
	}
	taken, err := s.users().ExistsUsername(ctx, in.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, domain.ValidationError{Field: "username", Code: "unique", Msg: "A user with that username already exists."}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}

	now := nowOr(s.Now)
	u := models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := s.users().Create(ctx, u)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.User{}, domain.ValidationError{Field: "username", Code: "unique", Msg: "A user with that username already exists.", Err: err}
		}
		return models.User{}, err
	}
	u.ID = id
	utils.LogEvent(s.RequestID, "auth", "create_user", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return u, nil
}

func (s AuthService) GetUser(ctx context.Context, id int64) (models.User, error) {
	return s.users().GetByID(ctx, id)
}

func (s AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users().List(ctx)
}
