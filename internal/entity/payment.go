package entity

import "github.com/shopspring/decimal"

// Preference is the transient result of creating a checkout session on the
// payment gateway. The gateway is the system of record; nothing is persisted
// locally.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
	PublicKey        string `json:"public_key"`
}

type PreferenceRequest struct {
	OrderID string           `json:"order_id"`
	Items   []PreferenceItem `json:"items"`
	Buyer   *BuyerDetails    `json:"buyer,omitempty"`
}

type PreferenceItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type BuyerDetails struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}
