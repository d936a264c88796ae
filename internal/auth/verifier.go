package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
	"timeRegistration/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken  = errors.New("токен не передан")
	ErrInvalidToken  = errors.New("неверный токен")
	ErrTokenExpired  = errors.New("срок действия токена истёк")
	ErrWrongAudience = errors.New("токен выдан для другого получателя")
)

// Verifier проверяет RS256 подпись токена, срок действия и получателя
type Verifier struct {
	publicKey     *rsa.PublicKey
	audiences     []string
	allowUnsigned bool
	now           func() time.Time
}

type Option func(*Verifier)

func WithPublicKey(key *rsa.PublicKey) Option {
	return func(v *Verifier) {
		v.publicKey = key
	}
}

// WithUnsignedTokens отключает проверку подписи. Только для локальной разработки.
func WithUnsignedTokens() Option {
	return func(v *Verifier) {
		v.allowUnsigned = true
	}
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func NewVerifier(audiences []string, options ...Option) (*Verifier, error) {
	v := &Verifier{
		audiences: audiences,
		now:       time.Now,
	}
	for _, opt := range options {
		opt(v)
	}
	if v.publicKey == nil && !v.allowUnsigned {
		return nil, errors.New("не задан публичный ключ для проверки токенов")
	}
	return v, nil
}

type claims struct {
	jwt.RegisteredClaims
	Name              string `json:"name"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

func (v *Verifier) Verify(token string) (models.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Principal{}, ErrMissingToken
	}

	var c claims
	if err := v.parse(token, &c); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, ErrTokenExpired
		}
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if len(v.audiences) > 0 && !slices.ContainsFunc(c.Audience, func(a string) bool {
		return slices.Contains(v.audiences, a)
	}) {
		return models.Principal{}, ErrWrongAudience
	}

	subject, err := uuid.Parse(c.Subject)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: subject не UUID", ErrInvalidToken)
	}

	name := c.Name
	if name == "" {
		name = c.PreferredUsername
	}
	return models.Principal{
		Subject:  subject,
		Name:     name,
		Email:    c.Email,
		Audience: c.Audience,
	}, nil
}

// parse проверяет подпись и exp. Без ключа подпись не проверяется, exp обязателен всегда.
func (v *Verifier) parse(token string, c *claims) error {
	options := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}

	if v.publicKey == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
			return err
		}
		return jwt.NewValidator(options...).Validate(c)
	}

	options = append(options, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return v.publicKey, nil
	}, options...)
	return err
}

// LoadPublicKey читает RSA ключ из PEM файла (PKIX или PKCS1)
func LoadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение ключа: %w", err)
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("разбор ключа: %w", err)
	}
	return key, nil
}
