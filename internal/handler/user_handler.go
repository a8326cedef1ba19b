package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Jorge-Marco5/go-api-template/internal/apperr"
	"github.com/Jorge-Marco5/go-api-template/internal/dto"
	"github.com/Jorge-Marco5/go-api-template/internal/response"
	"github.com/Jorge-Marco5/go-api-template/internal/service"
)

// UserHandler handles User CRUD HTTP requests
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List returns a page of users
// GET /users?page=&limit=
func (h *UserHandler) List(c *gin.Context) {
	page := parseQueryInt(c, "page", service.DefaultPage)
	limit := parseQueryInt(c, "limit", service.DefaultLimit)

	result, err := h.userService.List(c.Request.Context(), page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Paginated(c, result, page, limit)
}

// GetByID returns a single user
// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.OK(c, user)
}

// Create creates a user administratively
// POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, "user created successfully", user)
}

// Replace fully updates a user
// PUT /users/:id
func (h *UserHandler) Replace(c *gin.Context) {
	var req dto.ReplaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Email:    &req.Email,
		Password: &req.Password,
		Name:     &req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OKMessage(c, "user fully updated", user)
}

// Patch partially updates a user
// PATCH /users/:id
func (h *UserHandler) Patch(c *gin.Context) {
	var req dto.PatchUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperr.Validation(err.Error()))
		return
	}

	user, err := h.userService.Update(c.Request.Context(), c.Param("id"), service.UpdateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.OKMessage(c, "user partially updated", user)
}

// Delete removes a user
// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	response.OKMessage(c, "user deleted successfully", gin.H{"deletedId": id})
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
