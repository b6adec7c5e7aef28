package models

import "encoding/json"

// Variant is one purchasable variation of a product, identified by its
// color label within the owning product. Stock counts are advisory for
// display but are decremented at order placement.
type Variant struct {
	Color string `json:"color" validate:"required"`
	Stock int    `json:"stock" validate:"gte=0"`
	Image string `json:"image,omitempty"`
}

// Product represents one catalog entry. Prices are integers in the
// smallest currency unit. Variants are persisted as a JSON document in
// the variants column; older rows instead carry a single (variant, stock)
// pair which DecodeVariants folds into a one-element variant list.
type Product struct {
	ID          int      `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	Name        string   `json:"name" validate:"required,max=200"`
	Brand       string   `json:"brand" validate:"omitempty,max=100"`
	Price       int      `json:"price" validate:"required,gt=0"`
	Category    string   `json:"category" validate:"required,oneof=Watches Bags Belts Jewellery Accessories"`
	Description string   `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Image       string   `json:"image" gorm:"column:image_url"`
	ImagesJSON  string   `json:"-" gorm:"column:images;type:text"`
	Images      []string `json:"images" gorm:"-"`

	// Current variant document plus the legacy single-variant columns.
	VariantsJSON  string    `json:"-" gorm:"column:variants;type:text"`
	Variants      []Variant `json:"variants" gorm:"-" validate:"omitempty,dive"`
	LegacyVariant string    `json:"-" gorm:"column:variant"`
	LegacyStock   int       `json:"-" gorm:"column:stock"`

	IsFeatured bool `json:"is_featured" gorm:"column:is_featured"`
}

func (Product) TableName() string { return "products" }

// EncodeVariants serializes the in-memory variant and image lists into
// their persisted columns. Called before every write.
func (p *Product) EncodeVariants() error {
	raw, err := json.Marshal(p.Variants)
	if err != nil {
		return err
	}
	p.VariantsJSON = string(raw)
	if p.Images != nil {
		imgRaw, err := json.Marshal(p.Images)
		if err != nil {
			return err
		}
		p.ImagesJSON = string(imgRaw)
	}
	return nil
}

// DecodeVariants derives the variant list from the persisted columns.
// A malformed variants document is not an error: the row falls back to
// the legacy single-variant pair, or to an empty list, so one bad row
// never aborts a catalog fetch.
func (p *Product) DecodeVariants() {
	p.Variants = nil
	if p.VariantsJSON != "" {
		var variants []Variant
		if err := json.Unmarshal([]byte(p.VariantsJSON), &variants); err == nil {
			p.Variants = variants
		}
	}
	if p.Variants == nil && p.LegacyVariant != "" {
		p.Variants = []Variant{{Color: p.LegacyVariant, Stock: p.LegacyStock}}
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}

	p.Images = nil
	if p.ImagesJSON != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.ImagesJSON), &images); err == nil {
			p.Images = images
		}
	}
	if p.Images == nil && p.Image != "" {
		p.Images = []string{p.Image}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
}

// VariantByColor returns the variant with the given color label, or nil.
func (p *Product) VariantByColor(color string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].Color == color {
			return &p.Variants[i]
		}
	}
	return nil
}
