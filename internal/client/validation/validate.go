// Package validation checks user-entered forms before anything is sent to the
// API. A failing form yields *Errors with one human-readable message per
// field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	decimalRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	percentRe = regexp.MustCompile(`^(100(\.0{1,2})?|[0-9]{1,2}(\.\d{1,2})?)$`)
	indexRe   = regexp.MustCompile(`\[\d+\]`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	must := func(err error) {
		if err != nil {
			panic(err)
		}
	}
	must(v.RegisterValidation("decimal2", func(fl validator.FieldLevel) bool {
		return decimalRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("percent", func(fl validator.FieldLevel) bool {
		return percentRe.MatchString(fl.Field().String())
	}))
	return v
}

// messages maps "<json path>.<tag>" to the text shown to the user. Slice
// indexes are dropped from the path, so "tags[2]" looks up "tags[].required".
var messages = map[string]string{
	"username.min": "Username must be at least 3 characters long",
	"password.min": "Password must be at least 6 characters long",

	"title.min":                   "Title must be at least 3 characters long",
	"description.min":             "Description must be at least 10 characters long",
	"category.required":           "Select a category",
	"brand.required":              "Input brand name",
	"sku.required":                "Input SKU",
	"price.required":              "Price is required",
	"price.decimal2":              "Price must be a valid number",
	"discountPercentage.decimal2": "Discount must be a valid number",
	"discountPercentage.percent":  "Discount must be between 0 and 100",
	"stock.required":              "Stock is required",
	"stock.decimal2":              "Stock must be a valid number",
	"weight.required":             "Weight is required",
	"weight.decimal2":             "Weight must be a valid number",
	"dimensions.width.required":   "Width is required",
	"dimensions.width.decimal2":   "Width must be a valid number",
	"dimensions.height.required":  "Height is required",
	"dimensions.height.decimal2":  "Height must be a valid number",
	"dimensions.depth.required":   "Depth is required",
	"dimensions.depth.decimal2":   "Depth must be a valid number",
	"thumbnail.url":               "Thumbnail must be a valid URL",
	"tags.unique":                 "Tags must be unique",
	"tags[].required":             "Tags must not be empty",
}

// Validate checks v against its `validate` tags. It returns nil or *Errors.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Errors{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		out.Fields = append(out.Fields, FieldError{Field: field, Message: message(field, fe.Tag())})
	}
	return out
}

// fieldPath drops the struct name that prefixes a validator namespace.
func fieldPath(ns string) string {
	_, path, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}
	return path
}

func message(field, tag string) string {
	if m, ok := messages[indexRe.ReplaceAllString(field, "[]")+"."+tag]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid", field)
}
