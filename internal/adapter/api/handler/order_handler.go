package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/domain/entity"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type placeOrderRequest struct {
	Type   string `json:"type" validate:"required,oneof=product ticket mystery_box"`
	ItemID string `json:"itemId" validate:"required_unless=Type mystery_box"`
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	placed, err := h.orderUseCase.PlaceOrder(c.Request().Context(), middleware.ActorFrom(c), usecase.PlaceOrderInput{
		Type:   entity.ItemType(req.Type),
		ItemID: req.ItemID,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, placed)
}

func (h *OrderHandler) MyPending(c echo.Context) error {
	orders, err := h.orderUseCase.ListMyPending(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) ListPending(c echo.Context) error {
	orders, err := h.orderUseCase.ListPending(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, orders)
}

type FulfillmentHandler struct {
	fulfillmentUseCase *usecase.FulfillmentUseCase
}

func NewFulfillmentHandler(fulfillmentUseCase *usecase.FulfillmentUseCase) *FulfillmentHandler {
	return &FulfillmentHandler{
		fulfillmentUseCase: fulfillmentUseCase,
	}
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func (h *FulfillmentHandler) Confirm(c echo.Context) error {
	adminID, _ := c.Get("uid").(string)

	result, err := h.fulfillmentUseCase.Confirm(c.Request().Context(), c.Param("id"), adminID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *FulfillmentHandler) Reject(c echo.Context) error {
	var req rejectRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return response.Error(c, errors.BadRequest("Invalid request body", err))
		}
		if err := c.Validate(&req); err != nil {
			return response.Error(c, err)
		}
	}

	adminID, _ := c.Get("uid").(string)
	result, err := h.fulfillmentUseCase.Reject(c.Request().Context(), c.Param("id"), adminID, req.Reason)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *FulfillmentHandler) OrderLogs(c echo.Context) error {
	logs, err := h.fulfillmentUseCase.ListLogs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, logs)
}

func (h *FulfillmentHandler) RecentLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	logs, err := h.fulfillmentUseCase.RecentLogs(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, logs)
}
