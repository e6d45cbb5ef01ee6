package models

// Requests for the signal HTTP endpoints. Defined in domain for reuse
// between handlers and tests.

type BuySignalRequest struct {
	ItemID string `param:"id" json:"item_id" validate:"required"`
	Market string `query:"market" json:"market" default:"ps" validate:"oneof=ps xbox pc"`
}

type SellSignalRequest struct {
	ItemID   string `param:"id" json:"item_id" validate:"required"`
	Market   string `query:"market" json:"market" default:"ps" validate:"oneof=ps xbox pc"`
	BuyPrice int    `json:"buy_price" validate:"required,gt=0"`
}

type VelocityRequest struct {
	ItemID string `param:"id" json:"item_id" validate:"required"`
	Market string `query:"market" json:"market" default:"ps" validate:"oneof=ps xbox pc"`
	Hours  int    `query:"hours" json:"hours" default:"168" validate:"gte=1,lte=720"`
}

type PulseRequest struct {
	Market string `query:"market" json:"market" default:"ps" validate:"oneof=ps xbox pc"`
}
