package entity

import "time"

type ItemType string

const (
	ItemProduct    ItemType = "product"
	ItemTicket     ItemType = "ticket"
	ItemMysteryBox ItemType = "mystery_box"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemProduct, ItemTicket, ItemMysteryBox:
		return true
	}
	return false
}

const (
	MysteryBoxItemID   = "mystery-box-01"
	MysteryBoxItemName = "Mystery Box"
)

type PendingOrder struct {
	ID        string   `json:"id,omitempty"`
	UserID    string   `json:"userId"`
	UserEmail string   `json:"userEmail"`
	Type      ItemType `json:"type"`
	ItemName  string   `json:"itemName"`
	ItemID    string   `json:"itemId"`
	Price     float64  `json:"price"`
	Timestamp int64    `json:"timestamp"`
}

// PurchaseHistoryItem is keyed by the id of the order it was fulfilled from.
type PurchaseHistoryItem struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Type      ItemType `json:"type"`
	Price     float64  `json:"price"`
	Timestamp int64    `json:"timestamp"`
	UserEmail string   `json:"userEmail,omitempty"`
}

type OrderOutcome string

const (
	OrderFulfilled OrderOutcome = "fulfilled"
	OrderRejected  OrderOutcome = "rejected"
)

// OrderLog is the audit record written to Firestore for every terminal transition.
type OrderLog struct {
	ID        string       `json:"id" firestore:"id"`
	OrderID   string       `json:"order_id" firestore:"orderId"`
	Outcome   OrderOutcome `json:"outcome" firestore:"outcome"`
	ItemType  ItemType     `json:"item_type" firestore:"itemType"`
	ItemID    string       `json:"item_id" firestore:"itemId"`
	ItemName  string       `json:"item_name" firestore:"itemName"`
	Price     float64      `json:"price" firestore:"price"`
	UserID    string       `json:"user_id" firestore:"userId"`
	UserEmail string       `json:"user_email" firestore:"userEmail"`
	AdminID   string       `json:"admin_id" firestore:"adminId"`
	Notes     string       `json:"notes,omitempty" firestore:"notes,omitempty"`
	CreatedAt time.Time    `json:"created_at" firestore:"createdAt"`
}
