package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/catalogkeeper/internal/client/models"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/services"
	"github.com/dmitrijs2005/catalogkeeper/internal/client/validation"
)

// List prints the cached product list, fetching it when stale.
func (a *App) List(ctx context.Context) error {
	list, err := a.catalog.Products.List().Fetch(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load products: %v\n", err)
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE\tDISCOUNTED\tSTOCK")
	for _, p := range list.Products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%s\t%d\n",
			p.ID, p.Title, p.Category, p.Price, p.DiscountedPrice().StringFixed(2), p.Stock)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d of %d products\n", len(list.Products), list.Total)
	return nil
}

// Show prints one product.
func (a *App) Show(ctx context.Context, id int) error {
	p, err := a.catalog.Products.Detail(id).Fetch(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load product %d: %v\n", id, err)
		return err
	}
	printProduct(a.out, p)
	return nil
}

func printProduct(w io.Writer, p *models.Product) {
	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Title)
	fmt.Fprintf(w, "  %s\n", p.Description)
	fmt.Fprintf(w, "  Category:   %s\n", p.Category)
	if p.Brand != "" {
		fmt.Fprintf(w, "  Brand:      %s\n", p.Brand)
	}
	fmt.Fprintf(w, "  SKU:        %s\n", p.SKU)
	fmt.Fprintf(w, "  Price:      %.2f (-%.2f%% = %s)\n", p.Price, p.DiscountPercentage, p.DiscountedPrice().StringFixed(2))
	fmt.Fprintf(w, "  Stock:      %d\n", p.Stock)
	fmt.Fprintf(w, "  Weight:     %g\n", p.Weight)
	fmt.Fprintf(w, "  Dimensions: %g x %g x %g\n", p.Dimensions.Width, p.Dimensions.Height, p.Dimensions.Depth)
	if len(p.Tags) > 0 {
		fmt.Fprintf(w, "  Tags:       %s\n", strings.Join(p.Tags, ", "))
	}
	if p.Thumbnail != "" {
		fmt.Fprintf(w, "  Thumbnail:  %s\n", p.Thumbnail)
	}
}

// Add prompts for a new product and creates it.
func (a *App) Add(ctx context.Context) error {
	in, err := a.readProduct(validation.ProductInput{})
	if err != nil {
		return err
	}
	p, err := a.catalog.Products.CreateMutation().Mutate(ctx, in)
	if err != nil {
		return a.report(ctx, err)
	}
	fmt.Fprintf(a.out, "Created product #%d.\n", p.ID)
	return nil
}

// Edit prompts for new values of an existing product, keeping the current
// value of every field left empty, and saves it.
func (a *App) Edit(ctx context.Context, id int) error {
	p, err := a.catalog.Products.Detail(id).Fetch(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load product %d: %v\n", id, err)
		return err
	}
	in, err := a.readProduct(validation.FromProduct(*p))
	if err != nil {
		return err
	}
	if _, err := a.catalog.Products.UpdateMutation().Mutate(ctx, services.ProductUpdate{ID: id, Input: in}); err != nil {
		return a.report(ctx, err)
	}
	return nil
}

// Delete asks for confirmation and deletes the product.
func (a *App) Delete(ctx context.Context, id int) error {
	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete product %d? (y/N)", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if _, err := a.catalog.Products.DeleteMutation().Mutate(ctx, id); err != nil {
		return a.report(ctx, err)
	}
	return nil
}

// readProduct prompts for every form field. An empty answer keeps the value
// from cur.
func (a *App) readProduct(cur validation.ProductInput) (validation.ProductInput, error) {
	in := cur
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Title", &in.Title},
		{"Description", &in.Description},
		{"Category", &in.Category},
		{"Brand", &in.Brand},
		{"SKU", &in.SKU},
		{"Price", &in.Price},
		{"Discount percentage (optional)", &in.DiscountPercentage},
		{"Stock", &in.Stock},
		{"Weight", &in.Weight},
		{"Thumbnail URL (optional)", &in.Thumbnail},
	}
	for _, f := range fields {
		if err := a.prompt(f.prompt, f.dst); err != nil {
			return in, err
		}
	}

	dims := validation.DimensionsInput{}
	if cur.Dimensions != nil {
		dims = *cur.Dimensions
	}
	for _, f := range []struct {
		prompt string
		dst    *string
	}{
		{"Width (optional)", &dims.Width},
		{"Height (optional)", &dims.Height},
		{"Depth (optional)", &dims.Depth},
	} {
		if err := a.prompt(f.prompt, f.dst); err != nil {
			return in, err
		}
	}
	if dims != (validation.DimensionsInput{}) {
		in.Dimensions = &dims
	} else {
		in.Dimensions = nil
	}

	tags, err := GetList(a.reader, "Tags, one per line"+current(strings.Join(cur.Tags, ", ")), a.out)
	if err != nil {
		return in, err
	}
	if len(tags) > 0 {
		in.Tags = tags
	}
	return in, nil
}

func (a *App) prompt(label string, dst *string) error {
	v, err := getSimpleText(a.reader, label+current(*dst), a.out)
	if err != nil {
		return err
	}
	if v != "" {
		*dst = v
	}
	return nil
}

func current(v string) string {
	if v == "" {
		return ""
	}
	return " [" + v + "]"
}
