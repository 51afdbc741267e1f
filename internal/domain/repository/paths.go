package repository

import "tokoaing/internal/domain/entity"

const (
	UsersRoot          = "users"
	ProductsRoot       = "products"
	TicketsRoot        = "tickets"
	TicketSalesActive  = "ticketSettings/salesActive"
	PendingOrdersRoot  = "pendingOrders"
	AllTicketsRoot     = "allTickets"
	LeaderboardRoot    = "mysteryBoxLeaderboard"
	purchaseHistoryKey = "purchaseHistory"
	purchasedTicketKey = "purchasedTickets"
	mysteryBoxStateKey = "mysteryBoxState"
)

func AccountPath(uid string) string {
	return Join(UsersRoot, uid)
}

func AccountFieldPath(uid, field string) string {
	return Join(UsersRoot, uid, field)
}

func ProductPath(id string) string {
	return Join(ProductsRoot, id)
}

func TicketPath(id string) string {
	return Join(TicketsRoot, id)
}

func PendingOrderPath(id string) string {
	return Join(PendingOrdersRoot, id)
}

func PurchaseHistoryPath(uid string) string {
	return Join(UsersRoot, uid, purchaseHistoryKey)
}

func PurchasedTicketsPath(uid string) string {
	return Join(UsersRoot, uid, purchasedTicketKey)
}

func TicketLookupPath(barcode string) string {
	return Join(AllTicketsRoot, barcode)
}

func InboxPath(uid string, kind entity.InboxKind) string {
	return Join(UsersRoot, uid, string(kind))
}

func MysteryBoxStatePath(uid string) string {
	return Join(UsersRoot, uid, mysteryBoxStateKey)
}
