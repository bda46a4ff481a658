// Package models defines the data exchanged with the catalog API.
package models

import "github.com/shopspring/decimal"

// Product is a catalog item as served by the API. Rating and Reviews are
// read-only: the client never sends them back.
type Product struct {
	ID                   int        `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Category             string     `json:"category"`
	Brand                string     `json:"brand,omitempty"`
	SKU                  string     `json:"sku"`
	Price                float64    `json:"price"`
	DiscountPercentage   float64    `json:"discountPercentage"`
	Stock                int        `json:"stock"`
	Weight               float64    `json:"weight"`
	Dimensions           Dimensions `json:"dimensions"`
	Thumbnail            string     `json:"thumbnail,omitempty"`
	Images               []string   `json:"images,omitempty"`
	Tags                 []string   `json:"tags,omitempty"`
	Rating               float64    `json:"rating"`
	Reviews              []Review   `json:"reviews,omitempty"`
	AvailabilityStatus   string     `json:"availabilityStatus,omitempty"`
	WarrantyInformation  string     `json:"warrantyInformation,omitempty"`
	ShippingInformation  string     `json:"shippingInformation,omitempty"`
	ReturnPolicy         string     `json:"returnPolicy,omitempty"`
	MinimumOrderQuantity int        `json:"minimumOrderQuantity,omitempty"`
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type Review struct {
	Rating        int    `json:"rating"`
	Comment       string `json:"comment"`
	Date          string `json:"date"`
	ReviewerName  string `json:"reviewerName"`
	ReviewerEmail string `json:"reviewerEmail"`
}

var hundred = decimal.NewFromInt(100)

// DiscountedPrice is Price reduced by DiscountPercentage, rounded to cents.
// It is always derived, never stored.
func (p Product) DiscountedPrice() decimal.Decimal {
	price := decimal.NewFromFloat(p.Price)
	pct := decimal.NewFromFloat(p.DiscountPercentage)
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return price.Mul(factor).Round(2)
}

// ProductList is the paginated envelope returned by GET /products.
type ProductList struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// ProductPayload is the body of create and update requests. Nil fields are
// left out so an update only touches what it sets.
type ProductPayload struct {
	Title              *string     `json:"title,omitempty"`
	Description        *string     `json:"description,omitempty"`
	Category           *string     `json:"category,omitempty"`
	Brand              *string     `json:"brand,omitempty"`
	SKU                *string     `json:"sku,omitempty"`
	Price              *float64    `json:"price,omitempty"`
	DiscountPercentage *float64    `json:"discountPercentage,omitempty"`
	Stock              *int        `json:"stock,omitempty"`
	Weight             *float64    `json:"weight,omitempty"`
	Dimensions         *Dimensions `json:"dimensions,omitempty"`
	Thumbnail          *string     `json:"thumbnail,omitempty"`
	Tags               []string    `json:"tags,omitempty"`
}
