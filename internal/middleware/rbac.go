package middleware

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/response"
)

// RequireRoles blocks requests whose account role is not in the allowed
// set. Admin passes everywhere.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles)+1)
	allowed[models.RoleAdmin] = struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

type guardianChecker interface {
	Exists(ctx context.Context, guardianID, studentID int64) (bool, error)
}

// GuardianOf lets parents through only for students linked to their
// account via the id route param. Staff roles are unrestricted.
func GuardianOf(param string, guardians guardianChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role != models.RoleParent {
			c.Next()
			return
		}
		studentID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid student id"))
			c.Abort()
			return
		}
		linked, err := guardians.Exists(c.Request.Context(), claims.UserID, studentID)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check guardian link"))
			c.Abort()
			return
		}
		if !linked {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "not a guardian of this student"))
			c.Abort()
			return
		}
		c.Next()
	}
}
