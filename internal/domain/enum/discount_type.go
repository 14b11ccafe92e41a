package enum

// DiscountType represents how an invoice discount value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFlat       DiscountType = "flat"
)

func (d DiscountType) String() string {
	return string(d)
}

// Valid reports whether d is a known discount kind
func (d DiscountType) Valid() bool {
	return d == DiscountTypePercentage || d == DiscountTypeFlat
}

// OrDefault returns the form default for an unset discount kind
func (d DiscountType) OrDefault() DiscountType {
	if d == "" {
		return DiscountTypePercentage
	}
	return d
}
