package domain

// FieldSep is the triple-delimiter the storefront backend uses inside
// string-encoded tuple fields (coupon definitions, add-on id lists).
const FieldSep = "&&&"

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusOutOfStock Status = "OUTOFSTOCK"
)

// Product is the client-side view of a catalog product, as returned by the
// remote storefront backend. Prices live either on the product itself or on
// its pricing options; size-colours carry additive price deltas.
type Product struct {
	ID              string
	Name            string
	Images          []string
	Price           float64
	DiscountedPrice float64
	ProductOffer    string // flat percentage discount, e.g. "10"; empty when absent
	Status          Status
	PricingOptions  []PricingOption
	Addons          []Addon
	Colours         []Colour
}

// PricingOption is a selectable size/quantity tier with its own price and
// availability. QuantityLabel is the value shown for the "Quantity" variant.
type PricingOption struct {
	ID              string
	QuantityLabel   string
	Price           float64
	DiscountedPrice float64
	Status          Status
	SizeColours     []SizeColour
}

// SizeColour is a sub-variant nested under a pricing option. Price is a
// delta added on top of the resolved option price, never discounted.
type SizeColour struct {
	ID     string
	Name   string
	Price  float64
	Status Status
}

type Colour struct {
	Name   string
	Status Status
}

func (p *Product) OptionByID(id string) *PricingOption {
	for i := range p.PricingOptions {
		if p.PricingOptions[i].ID == id {
			return &p.PricingOptions[i]
		}
	}
	return nil
}

func (p *Product) OptionByLabel(label string) *PricingOption {
	for i := range p.PricingOptions {
		if p.PricingOptions[i].QuantityLabel == label {
			return &p.PricingOptions[i]
		}
	}
	return nil
}

func (p *Product) AddonByID(id string) *Addon {
	for i := range p.Addons {
		if p.Addons[i].ID == id {
			return &p.Addons[i]
		}
	}
	return nil
}

func (po *PricingOption) SizeColourByID(id string) *SizeColour {
	for i := range po.SizeColours {
		if po.SizeColours[i].ID == id {
			return &po.SizeColours[i]
		}
	}
	return nil
}
