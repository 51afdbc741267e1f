package handler

import (
	"github.com/labstack/echo/v4"

	"tokoaing/internal/adapter/api/middleware"
	"tokoaing/internal/usecase"
	"tokoaing/pkg/errors"
	"tokoaing/pkg/response"
)

type TicketHandler struct {
	ticketUseCase *usecase.TicketUseCase
}

func NewTicketHandler(ticketUseCase *usecase.TicketUseCase) *TicketHandler {
	return &TicketHandler{
		ticketUseCase: ticketUseCase,
	}
}

type createTicketRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsAvailable bool    `json:"isAvailable"`
}

type updateTicketRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	IsAvailable *bool    `json:"isAvailable"`
}

type salesRequest struct {
	SalesActive *bool `json:"salesActive" validate:"required"`
}

type barcodeRequest struct {
	Barcode string `json:"barcode" validate:"required"`
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	tickets, err := h.ticketUseCase.ListTickets(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tickets)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	ticket, err := h.ticketUseCase.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}

func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ticket, err := h.ticketUseCase.CreateTicket(c.Request().Context(), usecase.CreateTicketInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, ticket)
}

func (h *TicketHandler) UpdateTicket(c echo.Context) error {
	var req updateTicketRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ticket, err := h.ticketUseCase.UpdateTicket(c.Request().Context(), c.Param("id"), usecase.UpdateTicketInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}

func (h *TicketHandler) DeleteTicket(c echo.Context) error {
	if err := h.ticketUseCase.DeleteTicket(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Ticket deleted successfully"})
}

func (h *TicketHandler) GetSales(c echo.Context) error {
	active, err := h.ticketUseCase.SalesActive(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"salesActive": active})
}

func (h *TicketHandler) SetSales(c echo.Context) error {
	var req salesRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.ticketUseCase.SetSalesActive(c.Request().Context(), *req.SalesActive); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"salesActive": *req.SalesActive})
}

func (h *TicketHandler) MyTickets(c echo.Context) error {
	tickets, err := h.ticketUseCase.ListMyTickets(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tickets)
}

func (h *TicketHandler) Lookup(c echo.Context) error {
	lookup, err := h.ticketUseCase.LookupBarcode(c.Request().Context(), c.Param("barcode"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, lookup)
}

func (h *TicketHandler) MarkUsed(c echo.Context) error {
	var req barcodeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	lookup, err := h.ticketUseCase.MarkUsed(c.Request().Context(), req.Barcode)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, lookup)
}
