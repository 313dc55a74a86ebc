package pkg

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Purpose string

const (
	PurposeConfirm Purpose = "confirm"
	PurposeInvite  Purpose = "invite"
	PurposeReset   Purpose = "reset"
	PurposeSession Purpose = "session"
)

const (
	ConfirmTTL = 10 * time.Minute
	InviteTTL  = 5 * time.Minute
	ResetTTL   = 2 * time.Minute
	SessionTTL = 30 * time.Minute
)

type Claims struct {
	Purpose Purpose `json:"purpose"`
	Payload string  `json:"payload"`
	jwt.RegisteredClaims
}

// Signer issues and redeems salted, time-limited tokens.
type Signer struct {
	key []byte
	now func() time.Time
}

func NewSigner(secret, salt string) *Signer {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(salt))
	return &Signer{key: mac.Sum(nil), now: time.Now}
}

// WithClock returns a copy of s reading time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{key: s.key, now: now}
}

func (s *Signer) Issue(p Purpose, payload string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Purpose: p,
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
			Subject:  string(p),
			ID:       uuid.NewString(),
		},
	})
	return token.SignedString(s.key)
}

// Redeem returns the payload of a token issued for p. A maxAge of zero
// skips the age check.
func (s *Signer) Redeem(tokenStr string, p Purpose, maxAge time.Duration) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	if !token.Valid || claims.Purpose != p {
		return "", ErrTokenInvalid
	}
	if maxAge > 0 {
		if claims.IssuedAt == nil {
			return "", ErrTokenInvalid
		}
		if s.now().Sub(claims.IssuedAt.Time) > maxAge {
			return "", ErrTokenExpired
		}
	}
	return claims.Payload, nil
}

func (s *Signer) IssueSession(userID uint64) (string, error) {
	return s.Issue(PurposeSession, strconv.FormatUint(userID, 10))
}

// ParseSession ignores age; the session store bounds a session's life.
func (s *Signer) ParseSession(tokenStr string) (uint64, error) {
	payload, err := s.Redeem(tokenStr, PurposeSession, 0)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(payload, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}
