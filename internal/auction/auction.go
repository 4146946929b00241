// Package auction is the auction catalogue service: the Auction entity, its
// validation and the service operations behind the HTTP handlers.
package auction

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-service-core/model"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// CachePrefix namespaces the auction service's cache keys.
const CachePrefix = "auction"

type Status string

const (
	StatusLive          Status = "Live"
	StatusFinished      Status = "Finished"
	StatusReserveNotMet Status = "ReserveNotMet"
)

// Item is the vehicle being auctioned.
type Item struct {
	Make     string `json:"make" msgpack:"make" bun:"make,notnull"`
	Model    string `json:"model" msgpack:"model" bun:"model,notnull"`
	Year     int    `json:"year" msgpack:"year" bun:"year"`
	Color    string `json:"color" msgpack:"color" bun:"color,notnull"`
	Mileage  int    `json:"mileage" msgpack:"mileage" bun:"mileage"`
	ImageURL string `json:"imageUrl" msgpack:"imageUrl" bun:"image_url"`
}

func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Make, validation.Required, validation.Length(1, 100)),
		validation.Field(&i.Model, validation.Required, validation.Length(1, 100)),
		validation.Field(&i.Year, validation.Required, validation.Min(1900), validation.Max(2100)),
		validation.Field(&i.Color, validation.Required),
		validation.Field(&i.Mileage, validation.Min(0)),
	)
}

type Auction struct {
	bun.BaseModel `bun:"table:auctions,alias:a" json:"-" msgpack:"-"`
	model.Base

	ReservePrice   decimal.Decimal  `json:"reservePrice" msgpack:"reservePrice" bun:"reserve_price,type:numeric"`
	Seller         string           `json:"seller" msgpack:"seller" bun:"seller,notnull"`
	Winner         string           `json:"winner,omitempty" msgpack:"winner,omitempty" bun:"winner"`
	SoldAmount     *decimal.Decimal `json:"soldAmount,omitempty" msgpack:"soldAmount,omitempty" bun:"sold_amount,type:numeric"`
	CurrentHighBid *decimal.Decimal `json:"currentHighBid,omitempty" msgpack:"currentHighBid,omitempty" bun:"current_high_bid,type:numeric"`
	AuctionEnd     time.Time        `json:"auctionEnd" msgpack:"auctionEnd" bun:"auction_end,notnull"`
	Status         Status           `json:"status" msgpack:"status" bun:"status,notnull"`
	Item           Item             `json:"item" msgpack:"item" bun:"embed:item_"`
}

// Clone returns a copy sharing no pointers with a.
func (a *Auction) Clone() *Auction {
	c := *a
	c.SoldAmount = cloneDecimal(a.SoldAmount)
	c.CurrentHighBid = cloneDecimal(a.CurrentHighBid)
	if a.UpdatedAt != nil {
		t := *a.UpdatedAt
		c.UpdatedAt = &t
	}
	if a.DeletedAt != nil {
		t := *a.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func (a *Auction) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Seller, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.ReservePrice, validation.By(nonNegative)),
		validation.Field(&a.AuctionEnd, validation.Required),
		validation.Field(&a.Status, validation.In(StatusLive, StatusFinished, StatusReserveNotMet)),
		validation.Field(&a.Item),
	)
}

func nonNegative(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return nil
	}
	if d.IsNegative() {
		return validation.NewError("validation_min_greater_equal_than_required", "must be no less than 0")
	}
	return nil
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
