package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lotoemploi/loto-backend/internal/model"
)

// UserRegistry is the find-or-create contract the registration endpoint
// needs. repository.UserRepo is the production implementation.
type UserRegistry interface {
	FindOrCreate(ctx context.Context, name, surname, phone, nationalID, email string) (model.User, error)
}

// UserHandler bundles dependencies for user endpoints.
type UserHandler struct {
	Users UserRegistry
}

func NewUserHandler(u UserRegistry) *UserHandler { return &UserHandler{Users: u} }

// ----- DTOs -----

type registerReq struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Phone      string `json:"phone"`
	NationalID string `json:"cni"`
	Email      string `json:"email"` // optional
}

type userResp struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Phone      string `json:"phone"`
	NationalID string `json:"cni"`
	Email      string `json:"email,omitempty"`
}

// Register finds or creates a user keyed on the normalized identity
// fields. Submitting the same person twice returns the same id both
// times, regardless of casing, spacing or a changed email.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Surname) == "" ||
		strings.TrimSpace(req.Phone) == "" || strings.TrimSpace(req.NationalID) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, surname, phone and cni are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.FindOrCreate(ctx, req.Name, req.Surname, req.Phone, req.NationalID, req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register user failed"})
	}

	return c.JSON(http.StatusOK, userResp{
		ID:         u.ID,
		Name:       u.Name,
		Surname:    u.Surname,
		Phone:      u.Phone,
		NationalID: u.NationalID,
		Email:      u.Email,
	})
}
