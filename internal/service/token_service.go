package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// staffClaims is the JWT body of a staff session. The subject is the actor id.
type staffClaims struct {
	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
	jwt.RegisteredClaims
}

// JWTTokenService implements ports.TokenService with HS256 tokens.
type JWTTokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTTokenService(secret string, expiry time.Duration, issuer string) *JWTTokenService {
	return &JWTTokenService{
		secret: []byte(secret),
		expiry: expiry,
		issuer: issuer,
		now:    time.Now,
	}
}

// Generate signs a staff token. Roles are stored lowercase.
func (s *JWTTokenService) Generate(c ports.TokenClaims) (string, time.Time, error) {
	if c.ActorID == uuid.Nil {
		return "", time.Time{}, errors.New("actor id is required")
	}
	role := strings.ToLower(strings.TrimSpace(c.Role))
	if role == "" {
		return "", time.Time{}, errors.New("role is required")
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := staffClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.ActorID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	if c.BranchID != nil {
		claims.Branch = c.BranchID.String()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature, issuer and expiry and returns the staff claims.
func (s *JWTTokenService) Validate(tokenString string) (*ports.TokenClaims, error) {
	var claims staffClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid actor id in token: %w", err)
	}
	if claims.Role == "" {
		return nil, errors.New("token carries no role")
	}

	out := &ports.TokenClaims{ActorID: actorID, Role: claims.Role}
	if claims.Branch != "" {
		branchID, err := uuid.Parse(claims.Branch)
		if err != nil {
			return nil, fmt.Errorf("invalid branch id in token: %w", err)
		}
		out.BranchID = &branchID
	}
	return out, nil
}
