package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/internal/services"
	"github.com/userdeck/userdeck/pkg/errors"
	"github.com/userdeck/userdeck/pkg/response"
)

const (
	CtxActorKey   = "authActor"
	CtxAccountKey = "accountID"
)

// Auth enforces JWT authentication and resolves the actor from the directory.
// The token only carries the account id; the role is always the directory's
// current value, so demotions and deletions apply to in-flight tokens.
func Auth(jwt *iauth.JWTService, accounts *services.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		actor, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			// Token refers to a deleted account
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxActorKey, *actor)
		c.Set(CtxAccountKey, actor.ID)

		c.Next()
	}
}

// Actor returns the authenticated account stored by Auth.
func Actor(c *gin.Context) (models.Account, bool) {
	v, ok := c.Get(CtxActorKey)
	if !ok {
		return models.Account{}, false
	}
	actor, ok := v.(models.Account)
	return actor, ok
}
