package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenLifetime     = 30 * 24 * time.Hour
	bcryptCost        = 10
	maxLoginAttempts  = 5
	loginLockDuration = 5 * time.Minute
	minPasswordLen    = 6
	maxPasswordLen    = 72 // bcrypt limit
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,16}$`)

var (
	ErrBadUsername  = errors.New("username must be 3-16 letters, digits or underscores")
	ErrBadPassword  = errors.New("password must be 6-72 characters")
	ErrUserExists   = errors.New("username already taken")
	ErrBadLogin     = errors.New("invalid username or password")
	ErrLoginLocked  = errors.New("too many failed attempts, try again later")
	ErrInvalidToken = errors.New("invalid token")
)

type loginAttempts struct {
	count    int
	lockedAt time.Time
}

// Auth handles registration, login and JWT validation
type Auth struct {
	db     *DB
	secret []byte

	mu       sync.Mutex
	attempts map[string]*loginAttempts // keyed by IP
}

// NewAuth creates an Auth backed by the given DB. The signing secret is
// persisted in the settings table so tokens survive restarts.
func NewAuth(db *DB) *Auth {
	a := &Auth{
		db:       db,
		attempts: make(map[string]*loginAttempts),
	}
	a.secret = a.loadOrCreateSecret()
	return a
}

func (a *Auth) loadOrCreateSecret() []byte {
	if v, err := a.db.GetSetting("jwt_secret"); err == nil && v != "" {
		if b, err := hex.DecodeString(v); err == nil && len(b) == 32 {
			return b
		}
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("failed to generate jwt secret: %v", err)
	}
	if err := a.db.SetSetting("jwt_secret", hex.EncodeToString(b)); err != nil {
		log.Printf("failed to persist jwt secret: %v", err)
	}
	return b
}

// Register creates a new pilot account and returns its id and a token
func (a *Auth) Register(username, password string) (int64, string, error) {
	if !usernameRe.MatchString(username) {
		return 0, "", ErrBadUsername
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return 0, "", ErrBadPassword
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		return 0, "", err
	}
	if exists {
		return 0, "", ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return 0, "", err
	}

	id, err := a.db.CreatePilot(username, string(hash))
	if err != nil {
		return 0, "", err
	}

	token, err := a.issueToken(id, username)
	if err != nil {
		return 0, "", err
	}
	return id, token, nil
}

// Login verifies credentials and returns the pilot id and a token.
// Failed attempts are tracked per IP.
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if a.isLocked(ip) {
		return 0, "", ErrLoginLocked
	}

	pilot, err := a.db.GetPilotByUsername(username)
	if err != nil || pilot == nil {
		a.recordFailure(ip)
		return 0, "", ErrBadLogin
	}

	if bcrypt.CompareHashAndPassword([]byte(pilot.PasswordHash), []byte(password)) != nil {
		a.recordFailure(ip)
		return 0, "", ErrBadLogin
	}

	a.clearFailures(ip)

	token, err := a.issueToken(pilot.ID, pilot.Username)
	if err != nil {
		return 0, "", err
	}
	return pilot.ID, token, nil
}

// ValidateToken checks a JWT and returns the pilot id and username
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	idf, ok := claims["pid"].(float64)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	username, ok := claims["un"].(string)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	return int64(idf), username, nil
}

func (a *Auth) issueToken(id int64, username string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": id,
		"un":  username,
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
	})
	return token.SignedString(a.secret)
}

func (a *Auth) isLocked(ip string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	at, ok := a.attempts[ip]
	if !ok {
		return false
	}
	if at.count < maxLoginAttempts {
		return false
	}
	if time.Since(at.lockedAt) > loginLockDuration {
		delete(a.attempts, ip)
		return false
	}
	return true
}

func (a *Auth) recordFailure(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	at, ok := a.attempts[ip]
	if !ok {
		at = &loginAttempts{}
		a.attempts[ip] = at
	}
	at.count++
	if at.count >= maxLoginAttempts {
		at.lockedAt = time.Now()
	}
}

func (a *Auth) clearFailures(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.attempts, ip)
}
