package entity

// Client represents a customer that invoices are billed to
type Client struct {
	ID              string `json:"id"`
	Name            string `json:"name" validate:"required"`
	BillingAddress  string `json:"billingAddress" validate:"required"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	TaxID           string `json:"taxId,omitempty"`
}

// Snapshot returns an independent copy for embedding in an invoice
func (c *Client) Snapshot() *Client {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
