package validation

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/shopspring/decimal"
)

type LoginInput struct {
	Username string `json:"username" validate:"min=3"`
	Password string `json:"password" validate:"min=6"`
}

func (in LoginInput) Validate() error { return Validate(in) }

// Request returns the login body for validated input.
func (in LoginInput) Request() models.LoginRequest {
	return models.LoginRequest{Username: in.Username, Password: in.Password}
}

// ProductInput is the product form as typed by the user: numbers stay
// strings until the form is valid.
type ProductInput struct {
	Title              string `json:"title" validate:"min=3"`
	Description        string `json:"description" validate:"min=10"`
	Category           string `json:"category" validate:"required"`
	Brand              string `json:"brand" validate:"required"`
	SKU                string `json:"sku" validate:"required"`
	Price              string `json:"price" validate:"required,decimal2"`
	DiscountPercentage string `json:"discountPercentage" validate:"omitempty,decimal2,percent"`
	Stock              string `json:"stock" validate:"required,decimal2"`
	Weight             string `json:"weight" validate:"required,decimal2"`
	// Dimensions may be left out as a whole; once given, every value is required.
	Dimensions *DimensionsInput `json:"dimensions"`
	Thumbnail  string           `json:"thumbnail" validate:"omitempty,url"`
	Tags       []string         `json:"tags" validate:"omitempty,unique,dive,required"`
}

type DimensionsInput struct {
	Width  string `json:"width" validate:"required,decimal2"`
	Height string `json:"height" validate:"required,decimal2"`
	Depth  string `json:"depth" validate:"required,decimal2"`
}

func (in ProductInput) Validate() error { return Validate(in) }

// Payload validates the form and converts it to a request body. Optional
// fields left empty are omitted. Stock keeps only its integer part.
func (in ProductInput) Payload() (models.ProductPayload, error) {
	if err := in.Validate(); err != nil {
		return models.ProductPayload{}, err
	}

	p := models.ProductPayload{
		Title:       &in.Title,
		Description: &in.Description,
		Category:    &in.Category,
		Brand:       &in.Brand,
		SKU:         &in.SKU,
	}

	var err error
	if p.Price, err = number(in.Price); err != nil {
		return models.ProductPayload{}, fmt.Errorf("price: %w", err)
	}
	if p.Weight, err = number(in.Weight); err != nil {
		return models.ProductPayload{}, fmt.Errorf("weight: %w", err)
	}
	if in.DiscountPercentage != "" {
		if p.DiscountPercentage, err = number(in.DiscountPercentage); err != nil {
			return models.ProductPayload{}, fmt.Errorf("discountPercentage: %w", err)
		}
	}

	stock, err := decimal.NewFromString(in.Stock)
	if err != nil {
		return models.ProductPayload{}, fmt.Errorf("stock: %w", err)
	}
	s := int(stock.IntPart())
	p.Stock = &s

	if d := in.Dimensions; d != nil {
		w, err := decimal.NewFromString(d.Width)
		if err != nil {
			return models.ProductPayload{}, fmt.Errorf("dimensions.width: %w", err)
		}
		h, err := decimal.NewFromString(d.Height)
		if err != nil {
			return models.ProductPayload{}, fmt.Errorf("dimensions.height: %w", err)
		}
		dp, err := decimal.NewFromString(d.Depth)
		if err != nil {
			return models.ProductPayload{}, fmt.Errorf("dimensions.depth: %w", err)
		}
		p.Dimensions = &models.Dimensions{
			Width:  w.InexactFloat64(),
			Height: h.InexactFloat64(),
			Depth:  dp.InexactFloat64(),
		}
	}

	if in.Thumbnail != "" {
		p.Thumbnail = &in.Thumbnail
	}
	if len(in.Tags) > 0 {
		p.Tags = append([]string(nil), in.Tags...)
	}
	return p, nil
}

func number(s string) (*float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	f := d.InexactFloat64()
	return &f, nil
}

// FromProduct fills a form with p's current values, for editing.
func FromProduct(p models.Product) ProductInput {
	return ProductInput{
		Title:              p.Title,
		Description:        p.Description,
		Category:           p.Category,
		Brand:              p.Brand,
		SKU:                p.SKU,
		Price:              formatNumber(p.Price),
		DiscountPercentage: formatNumber(p.DiscountPercentage),
		Stock:              strconv.Itoa(p.Stock),
		Weight:             formatNumber(p.Weight),
		Dimensions: &DimensionsInput{
			Width:  formatNumber(p.Dimensions.Width),
			Height: formatNumber(p.Dimensions.Height),
			Depth:  formatNumber(p.Dimensions.Depth),
		},
		Thumbnail: p.Thumbnail,
		Tags:      append([]string(nil), p.Tags...),
	}
}

func formatNumber(f float64) string {
	return decimal.NewFromFloat(f).Round(2).String()
}
