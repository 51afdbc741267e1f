package handler

import (
	"tokoaing/internal/infrastructure/websocket"
	"tokoaing/internal/session"
	"tokoaing/internal/usecase"
)

// UseCases is everything the HTTP surface calls into.
type UseCases struct {
	Auth        *usecase.AuthUseCase
	User        *usecase.UserUseCase
	Product     *usecase.ProductUseCase
	Ticket      *usecase.TicketUseCase
	Order       *usecase.OrderUseCase
	Fulfillment *usecase.FulfillmentUseCase
	MysteryBox  *usecase.MysteryBoxUseCase
	Leaderboard *usecase.LeaderboardUseCase
	Inbox       *usecase.InboxUseCase
	History     *usecase.HistoryUseCase
	Feed        *usecase.FeedUseCase
}

var (
	sessionHandler     *SessionHandler
	authHandler        *AuthHandler
	userHandler        *UserHandler
	productHandler     *ProductHandler
	ticketHandler      *TicketHandler
	orderHandler       *OrderHandler
	fulfillmentHandler *FulfillmentHandler
	mysteryBoxHandler  *MysteryBoxHandler
	leaderboardHandler *LeaderboardHandler
	inboxHandler       *InboxHandler
	historyHandler     *HistoryHandler
	healthHandler      *HealthHandler
	webSocketHandler   *WebSocketHandler
)

func Setup(uc UseCases, sessions *session.Manager, wsManager *websocket.Manager, contactURL string) {
	sessionHandler = NewSessionHandler(sessions)
	authHandler = NewAuthHandler(uc.Auth)
	userHandler = NewUserHandler(uc.User)
	productHandler = NewProductHandler(uc.Product)
	ticketHandler = NewTicketHandler(uc.Ticket)
	orderHandler = NewOrderHandler(uc.Order)
	fulfillmentHandler = NewFulfillmentHandler(uc.Fulfillment)
	mysteryBoxHandler = NewMysteryBoxHandler(uc.MysteryBox)
	leaderboardHandler = NewLeaderboardHandler(uc.Leaderboard)
	inboxHandler = NewInboxHandler(uc.Inbox)
	historyHandler = NewHistoryHandler(uc.History)
	healthHandler = NewHealthHandler(contactURL)
	webSocketHandler = NewWebSocketHandler(wsManager, uc.Feed)
}

func GetSessionHandler() *SessionHandler {
	return sessionHandler
}

func GetAuthHandler() *AuthHandler {
	return authHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetProductHandler() *ProductHandler {
	return productHandler
}

func GetTicketHandler() *TicketHandler {
	return ticketHandler
}

func GetOrderHandler() *OrderHandler {
	return orderHandler
}

func GetFulfillmentHandler() *FulfillmentHandler {
	return fulfillmentHandler
}

func GetMysteryBoxHandler() *MysteryBoxHandler {
	return mysteryBoxHandler
}

func GetLeaderboardHandler() *LeaderboardHandler {
	return leaderboardHandler
}

func GetInboxHandler() *InboxHandler {
	return inboxHandler
}

func GetHistoryHandler() *HistoryHandler {
	return historyHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}
