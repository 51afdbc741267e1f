package handler

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	account, err := h.authUseCase.Register(c.Request().Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, account)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.authUseCase.SendPasswordReset(c.Request().Context(), req.Email); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Password reset email sent"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	account, err := h.authUseCase.GetProfile(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, account)
}

type updateCredentialsRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewEmail        string `json:"newEmail" validate:"omitempty,email"`
	NewPassword     string `json:"newPassword" validate:"omitempty,min=6"`
}

func (h *AuthHandler) UpdateCredentials(c echo.Context) error {
	var req updateCredentialsRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	account, err := h.authUseCase.UpdateCredentials(c.Request().Context(), middleware.ActorFrom(c), usecase.UpdateCredentialsInput{
		CurrentPassword: req.CurrentPassword,
		NewEmail:        req.NewEmail,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, account)
}
