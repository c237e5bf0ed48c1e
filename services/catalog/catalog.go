package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

type Product struct {
	UID         string
	Name        string
	Description string
	Price       decimal.Decimal
	Image       string
	Sizes       []string
	Colors      []string
}

func (p Product) HasSize(size string) bool {
	return size == "" || len(p.Sizes) == 0 || slices.Contains(p.Sizes, size)
}

func (p Product) HasColor(color string) bool {
	return color == "" || len(p.Colors) == 0 || slices.Contains(p.Colors, color)
}

// Catalog is the read-only source of names, prices and images at add-to-cart time
type Catalog struct {
	products []Product
}

func New(products ...Product) *Catalog {
	if len(products) == 0 {
		products = defaultProducts
	}
	return &Catalog{
		products: products,
	}
}

func (c *Catalog) List() []Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Get(uid string) (Product, bool) {
	for _, p := range c.products {
		if p.UID == uid {
			return p, true
		}
	}
	return Product{}, false
}

var defaultProducts = []Product{
	{
		UID:         "product_hockey_stick",
		Name:        "Hockey stick",
		Description: "Composite outdoor stick",
		Price:       decimal.NewFromInt(19000),
		Image:       "/static/img/hockey_stick.jpg",
		Sizes:       []string{"36.5", "37.5"},
		Colors:      []string{"Black", "Red"},
	},
	{
		UID:         "product_hockey_shoes",
		Name:        "Hockey shoes",
		Description: "Turf shoes",
		Price:       decimal.NewFromInt(12000),
		Image:       "/static/img/hockey_shoes.jpg",
		Sizes:       []string{"40", "41", "42", "43", "44"},
		Colors:      []string{"Black", "White"},
	},
	{
		UID:         "product_jogging_pants",
		Name:        "Jogging pants",
		Description: "Cotton jogging pants",
		Price:       decimal.RequireFromString("6000.50"),
		Image:       "/static/img/jogging_pants.jpg",
		Sizes:       []string{"S", "M", "L", "XL"},
		Colors:      []string{"Black", "Grey", "Navy"},
	},
	{
		UID:         "product_sweat_shirt",
		Name:        "Sweat shirt",
		Description: "Crew neck sweat shirt",
		Price:       decimal.NewFromInt(7000),
		Image:       "/static/img/sweat_shirt.jpg",
		Sizes:       []string{"S", "M", "L", "XL"},
		Colors:      []string{"Black", "White"},
	},
	{
		UID:         "product_tennis_balls",
		Name:        "Tennis balls",
		Description: "Can of four",
		Price:       decimal.RequireFromString("2499.99"),
		Image:       "/static/img/tennis_balls.jpg",
	},
}
