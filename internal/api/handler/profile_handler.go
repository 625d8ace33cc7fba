package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campusconnect-api/internal/api/metrics"
	"github.com/campusconnect/campusconnect-api/internal/core/domain"
	"github.com/campusconnect/campusconnect-api/internal/core/ports"
)

// ProfileHandler serves the authenticated account endpoints.
type ProfileHandler struct {
	profiles ports.ProfileService
}

func NewProfileHandler(profiles ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me returns the caller's account.
//
// @Summary      Current account
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.AccountSummary
// @Failure      401  {object}  messageResponse
// @Router       /auth/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	acc, err := currentAccount(c)
	if err != nil {
		return err
	}

	summary, err := h.profiles.Me(c.Request().Context(), acc.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// UpdateProfile changes name, phone or whatsapp and returns a fresh token.
//
// @Summary      Update profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Fields to change"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Router       /auth/profile [put]
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	acc, err := currentAccount(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.ObserveAuth("profile", err)
		return err
	}

	session, err := h.profiles.UpdateProfile(c.Request().Context(), acc.ID, domain.ProfilePatch{
		Name:     req.Name,
		Phone:    req.Phone,
		WhatsApp: req.WhatsApp,
	})
	metrics.ObserveAuth("profile", err)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{AccountSummary: session.Account, Token: session.Token})
}
