package handler

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/response"
)

type InboxHandler struct {
	inboxUseCase *usecase.InboxUseCase
}

func NewInboxHandler(inboxUseCase *usecase.InboxUseCase) *InboxHandler {
	return &InboxHandler{
		inboxUseCase: inboxUseCase,
	}
}

// List serves /inbox/:kind where kind is messages or notifications.
func (h *InboxHandler) List(c echo.Context) error {
	view, err := h.inboxUseCase.List(c.Request().Context(), middleware.ActorFrom(c), entity.InboxKind(c.Param("kind")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, view)
}

func (h *InboxHandler) MarkAllRead(c echo.Context) error {
	n, err := h.inboxUseCase.MarkAllRead(c.Request().Context(), middleware.ActorFrom(c), entity.InboxKind(c.Param("kind")))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"marked": n})
}

type HistoryHandler struct {
	historyUseCase *usecase.HistoryUseCase
}

func NewHistoryHandler(historyUseCase *usecase.HistoryUseCase) *HistoryHandler {
	return &HistoryHandler{
		historyUseCase: historyUseCase,
	}
}

func (h *HistoryHandler) MyHistory(c echo.Context) error {
	items, err := h.historyUseCase.MyHistory(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, items)
}

func (h *HistoryHandler) Report(c echo.Context) error {
	report, err := h.historyUseCase.Report(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, report)
}
