package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/userdeck/userdeck/internal/middleware"
	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/internal/services"
	"github.com/userdeck/userdeck/pkg/errors"
	"github.com/userdeck/userdeck/pkg/response"
)

// UserHandler exposes directory operations over REST.
type UserHandler struct {
	accounts *services.AccountService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

type createUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type changeRoleRequest struct {
	NewRole string `json:"newRole" validate:"required"`
}

// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, accounts)
}

// GET /api/users/search?query=
func (h *UserHandler) Search(c *gin.Context) {
	accounts, err := h.accounts.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, accounts)
}

// GET /api/users/statistics
func (h *UserHandler) Statistics(c *gin.Context) {
	stats, err := h.accounts.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createUserRequest
	if !bindAndValidate(c, &req) {
		return
	}

	// The requested role may be anything; the policy decides what is granted.
	// An unknown or absent role falls back to user.
	requested := models.Role(req.Role)

	account, err := h.accounts.Create(c.Request.Context(), actor, services.CreateAccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     requested,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user":    account,
	})
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.accounts.Delete(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "User deleted successfully",
		"user":    deleted.Summary(),
	})
}

// PATCH /api/users/:id/role
func (h *UserHandler) ChangeRole(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var req changeRoleRequest
	if !bindAndValidate(c, &req) {
		return
	}

	newRole, err := models.ParseRole(req.NewRole)
	if err != nil {
		response.Error(c, services.ErrInvalidAssignedRole)
		return
	}

	updated, err := h.accounts.ChangeRole(c.Request.Context(), actor, id, newRole)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Role updated successfully",
		"user":    updated,
	})
}

// parseID reads the :id path segment. Ids are integers; anything else is an
// unknown resource rather than a malformed request.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, errors.ErrNotFound.WithMessage("User not found"))
		return 0, false
	}
	return id, true
}
