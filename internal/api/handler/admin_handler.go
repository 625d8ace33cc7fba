package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// AdminHandler serves read-only account lookups for admins.
type AdminHandler struct {
	profiles ports.ProfileService
}

func NewAdminHandler(profiles ports.ProfileService) *AdminHandler {
	return &AdminHandler{profiles: profiles}
}

// GetAccount returns any account by id.
//
// @Summary      Look up an account
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account ID"
// @Success      200  {object}  domain.AccountSummary
// @Failure      401  {object}  messageResponse
// @Failure      403  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /admin/accounts/{id} [get]
func (h *AdminHandler) GetAccount(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account id is required")
	}

	summary, err := h.profiles.Me(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
