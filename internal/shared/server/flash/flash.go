// Package flash carries one-shot user messages across a redirect in a signed
// cookie.
package flash

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CookieName = "mindmap_flash"
	defaultTTL = 5 * time.Minute
	issuer     = "mindmap-backend"
)

var ErrInvalidMessage = errors.New("invalid flash cookie")

type claims struct {
	Messages []string `json:"messages"`
	jwt.RegisteredClaims
}

// Store signs flash cookies with HS256.
type Store struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// New constructs a Store. secure marks cookies Secure (HTTPS only).
func New(secret string, secure bool) *Store {
	return &Store{
		secret: []byte(secret),
		ttl:    defaultTTL,
		secure: secure,
		now:    time.Now,
	}
}

// Add queues msg for the next page render, keeping any message still pending
// from the current request.
func (s *Store) Add(c *gin.Context, msg string) error {
	pending, _ := s.read(c)
	pending = append(pending, msg)

	token, err := s.sign(pending)
	if err != nil {
		return err
	}
	s.setCookie(c, token, int(s.ttl.Seconds()))
	return nil
}

// Pop returns pending messages and clears the cookie. Tampered or expired
// cookies yield no messages.
func (s *Store) Pop(c *gin.Context) []string {
	if _, err := c.Cookie(CookieName); err != nil {
		return nil
	}
	s.setCookie(c, "", -1)
	msgs, err := s.read(c)
	if err != nil {
		return nil
	}
	return msgs
}

func (s *Store) sign(msgs []string) (string, error) {
	now := s.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Messages: msgs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return tok.SignedString(s.secret)
}

func (s *Store) read(c *gin.Context) ([]string, error) {
	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		return nil, ErrInvalidMessage
	}
	var parsed claims
	_, err = jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidMessage, err)
	}
	return parsed.Messages, nil
}

func (s *Store) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, value, maxAge, "/", "", s.secure, true)
}
