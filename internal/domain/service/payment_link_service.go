package service

import (
	"tokoaing/internal/domain/entity"
)

// PaymentLinkService resolves the external checkout page a buyer is sent to after placing
// an order. Payment itself happens off-site and is reconciled by an admin.
type PaymentLinkService struct {
	links map[entity.ItemType]string
}

func NewPaymentLinkService(productURL, ticketURL, mysteryBoxURL string) *PaymentLinkService {
	return &PaymentLinkService{
		links: map[entity.ItemType]string{
			entity.ItemProduct:    productURL,
			entity.ItemTicket:     ticketURL,
			entity.ItemMysteryBox: mysteryBoxURL,
		},
	}
}

func (s *PaymentLinkService) URLFor(itemType entity.ItemType) string {
	return s.links[itemType]
}
