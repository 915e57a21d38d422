package handler

import (
	"github.com/labstack/echo/v4"

	"royalchat/internal/usecase"
	"royalchat/pkg/errors"
	"royalchat/pkg/response"
)

type AdminHandler struct {
	adminUseCase *usecase.AdminUseCase
}

func NewAdminHandler(adminUseCase *usecase.AdminUseCase) *AdminHandler {
	return &AdminHandler{
		adminUseCase: adminUseCase,
	}
}

// Me returns the profile of the authenticated admin.
func (h *AdminHandler) Me(c echo.Context) error {
	uid := c.Get("uid").(string)

	admin, err := h.adminUseCase.Me(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, admin)
}

// GetAllUsers returns the plain user listing without chat state.
func (h *AdminHandler) GetAllUsers(c echo.Context) error {
	users, err := h.adminUseCase.GetAllUsers(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

// GetUsersList returns every regular user together with the number of
// their messages the admin has not read yet, for the dashboard sidebar.
func (h *AdminHandler) GetUsersList(c echo.Context) error {
	users, err := h.adminUseCase.GetUsersList(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, users)
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.adminUseCase.GetStats(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stats)
}

func (h *AdminHandler) RemoveUser(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return response.Error(c, errors.BadRequest("User ID is required", nil))
	}

	if err := h.adminUseCase.RemoveUser(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "User removed successfully",
	})
}
