package handler

import (
	"strings"

	"clinic-ledger/internal/adapter/http/middleware"
	"clinic-ledger/internal/core/domain"
	"clinic-ledger/internal/core/ports"
	"clinic-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrivilegedRoles may reverse a closed day, verify the chain and export unredacted snapshots.
var PrivilegedRoles = []string{domain.RoleAdmin, domain.RoleOwner}

func isPrivileged(claims *ports.TokenClaims) bool {
	for _, r := range PrivilegedRoles {
		if strings.EqualFold(claims.Role, r) {
			return true
		}
	}
	return false
}

// staff returns the authenticated caller's claims.
func staff(c *gin.Context) (*ports.TokenClaims, error) {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil, apperror.ErrInvalidToken()
	}
	return claims, nil
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

func bindError(err error) error {
	return apperror.Validation(strings.TrimSpace(err.Error()))
}
