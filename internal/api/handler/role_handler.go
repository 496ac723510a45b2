package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviestream/identity-system/internal/core/ports"
)

// RoleHandler serves administrative role management. Routes sit behind
// both the Auth and AdminOnly middleware.
type RoleHandler struct {
	admin ports.AdminService
}

func NewRoleHandler(admin ports.AdminService) *RoleHandler {
	return &RoleHandler{admin: admin}
}

type roleRequest struct {
	Level          int    `json:"level"`
	Name           string `json:"name" validate:"required"`
	Description    string `json:"description"`
	MaxContentYear int    `json:"max_content_year"`
}

type assignRoleRequest struct {
	UserID string `json:"user_id" validate:"required"`
	RoleID string `json:"role_id" validate:"required"`
}

func (h *RoleHandler) Create(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.admin.CreateRole(c.Request().Context(), ports.RoleInput{
		Level:          req.Level,
		Name:           req.Name,
		Description:    req.Description,
		MaxContentYear: req.MaxContentYear,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHandler) Update(c echo.Context) error {
	var req roleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	role, err := h.admin.UpdateRole(c.Request().Context(), c.Param("id"), ports.RoleInput{
		Level:          req.Level,
		Name:           req.Name,
		Description:    req.Description,
		MaxContentYear: req.MaxContentYear,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, role)
}

func (h *RoleHandler) Assign(c echo.Context) error {
	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.admin.AssignRole(c.Request().Context(), req.UserID, req.RoleID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "role assigned"})
}

func (h *RoleHandler) Delete(c echo.Context) error {
	if err := h.admin.DeleteRole(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
