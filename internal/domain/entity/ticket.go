package entity

type Ticket struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"isAvailable"`
}

// PurchasedTicket lives at users/{uid}/purchasedTickets/{id}.
type PurchasedTicket struct {
	ID                string `json:"id,omitempty"`
	TicketID          string `json:"ticketId"`
	Name              string `json:"name"`
	PurchaseTimestamp int64  `json:"purchaseTimestamp"`
	BarcodeValue      string `json:"barcodeValue"`
	IsUsed            bool   `json:"isUsed"`
	UsedTimestamp     *int64 `json:"usedTimestamp,omitempty"`
}

// TicketLookup is the allTickets/{barcode} mirror read at the gate.
type TicketLookup struct {
	BarcodeValue      string `json:"barcodeValue"`
	PurchasedTicketID string `json:"purchasedTicketId"`
	TicketID          string `json:"ticketId"`
	Name              string `json:"name"`
	PurchaseTimestamp int64  `json:"purchaseTimestamp"`
	IsUsed            bool   `json:"isUsed"`
	UsedTimestamp     *int64 `json:"usedTimestamp,omitempty"`
	UserID            string `json:"userId"`
	UserEmail         string `json:"userEmail"`
}
