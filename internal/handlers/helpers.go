package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skyaboveme/yourgency/internal/authz"
	"github.com/skyaboveme/yourgency/internal/models"
)

// respondError переводит доменную ошибку в HTTP-статус и {"error": "..."}.
func respondError(c *gin.Context, err error) {
	var (
		nf       *models.ErrNotFound
		verr     *models.ErrValidation
		unauth   *models.ErrUnauthorized
		forbid   *models.ErrForbidden
		conflict *models.ErrConflict
		ext      *models.ErrExternalService
	)
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &nf):
		status = http.StatusNotFound
	case errors.As(err, &verr):
		status = http.StatusBadRequest
	case errors.As(err, &unauth):
		status = http.StatusUnauthorized
	case errors.As(err, &forbid):
		status = http.StatusForbidden
	case errors.As(err, &conflict):
		status = http.StatusConflict
	case errors.As(err, &ext):
		status = http.StatusBadGateway
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func getUserAndRole(c *gin.Context) (userID string, role models.Role) {
	if v, ok := c.Get(authz.CtxUserID); ok {
		userID, _ = v.(string)
	}
	if v, ok := c.Get(authz.CtxRole); ok {
		role, _ = v.(models.Role)
	}
	return
}
