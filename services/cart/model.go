package cart

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Product is what the catalog supplies when something is added to the cart
type Product struct {
	UID   string
	Name  string
	Price decimal.Decimal
	Image string
}

type Key struct {
	ProductUID string
	Size       string
	Color      string
}

type Line struct {
	ProductUID string          `json:"productUid"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	Size       string          `json:"size,omitempty"`
	Color      string          `json:"color,omitempty"`
	Image      string          `json:"image,omitempty"`
}

func (l Line) Key() Key {
	return Key{
		ProductUID: l.ProductUID,
		Size:       l.Size,
		Color:      l.Color,
	}
}

func (l Line) TotalPrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps its lines in insertion order, count and total are always derived
type Cart struct {
	Lines []Line
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) Count() int {
	count := 0
	for _, l := range c.Lines {
		count += l.Quantity
	}
	return count
}

func (c Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.TotalPrice())
	}
	return total
}

func (c Cart) Clone() Cart {
	return Cart{Lines: slices.Clone(c.Lines)}
}

func (c *Cart) indexOf(key Key) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool {
		return l.Key() == key
	})
}

func (c *Cart) AddItem(product Product, size string, color string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	idx := c.indexOf(Key{ProductUID: product.UID, Size: size, Color: color})
	if idx >= 0 {
		c.Lines[idx].Quantity += quantity
		return
	}

	c.Lines = append(c.Lines, Line{
		ProductUID: product.UID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   quantity,
		Size:       size,
		Color:      color,
		Image:      product.Image,
	})
}

func (c *Cart) RemoveItem(productUID string, size string, color string) {
	idx := c.indexOf(Key{ProductUID: productUID, Size: size, Color: color})
	if idx < 0 {
		return
	}
	c.Lines = slices.Delete(c.Lines, idx, idx+1)
}

func (c *Cart) UpdateQuantity(productUID string, quantity int, size string, color string) {
	if quantity <= 0 {
		c.RemoveItem(productUID, size, color)
		return
	}

	idx := c.indexOf(Key{ProductUID: productUID, Size: size, Color: color})
	if idx < 0 {
		return
	}
	c.Lines[idx].Quantity = quantity
}

func (c *Cart) Clear() {
	c.Lines = nil
}
