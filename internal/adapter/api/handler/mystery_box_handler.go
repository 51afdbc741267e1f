package handler

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type MysteryBoxHandler struct {
	mysteryBoxUseCase *usecase.MysteryBoxUseCase
}

func NewMysteryBoxHandler(mysteryBoxUseCase *usecase.MysteryBoxUseCase) *MysteryBoxHandler {
	return &MysteryBoxHandler{
		mysteryBoxUseCase: mysteryBoxUseCase,
	}
}

type setFlagRequest struct {
	Field string `json:"field" validate:"required,oneof=canOpen willWin"`
	Value *bool  `json:"value" validate:"required"`
}

func (h *MysteryBoxHandler) State(c echo.Context) error {
	state, err := h.mysteryBoxUseCase.GetState(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, state)
}

func (h *MysteryBoxHandler) Open(c echo.Context) error {
	result, err := h.mysteryBoxUseCase.Open(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *MysteryBoxHandler) Candidates(c echo.Context) error {
	candidates, err := h.mysteryBoxUseCase.Candidates(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, candidates)
}

func (h *MysteryBoxHandler) SetFlag(c echo.Context) error {
	var req setFlagRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	state, err := h.mysteryBoxUseCase.SetFlag(c.Request().Context(), c.Param("uid"), req.Field, *req.Value)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, state)
}

type LeaderboardHandler struct {
	leaderboardUseCase *usecase.LeaderboardUseCase
}

func NewLeaderboardHandler(leaderboardUseCase *usecase.LeaderboardUseCase) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardUseCase: leaderboardUseCase,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(c echo.Context) error {
	rows, err := h.leaderboardUseCase.Leaderboard(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, rows)
}
