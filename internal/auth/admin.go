package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"daztao-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionTTL matches the one-week admin cookie.
const SessionTTL = 7 * 24 * time.Hour

const adminSubject = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrAdminDisabled      = errors.New("admin login is not configured")
	ErrMissingSecret      = errors.New("JWT_SECRET is not set")
	ErrInvalidToken       = errors.New("invalid token")
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticator checks the single back-office password and issues session tokens.
type Authenticator struct {
	passwordHash string
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator hashes adminPassword once so the plain value is not kept in memory.
// An empty adminPassword disables login.
func NewAuthenticator(adminPassword, secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}

	a := &Authenticator{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}

	if adminPassword != "" {
		hash, err := HashPassword(adminPassword)
		if err != nil {
			return nil, err
		}
		a.passwordHash = hash
	}

	return a, nil
}

// Login returns a signed session token and its expiry when password matches.
func (a *Authenticator) Login(password string) (string, time.Time, error) {
	if a.passwordHash == "" {
		return "", time.Time{}, ErrAdminDisabled
	}
	if !CheckPasswordHash(password, a.passwordHash) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.GenerateToken()
}

func (a *Authenticator) GenerateToken() (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)

	claims := AdminClaims{
		Role: utils.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (a *Authenticator) ParseToken(tokenStr string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&AdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(claims.Role), []byte(utils.RoleAdmin)) != 1 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
