package entity

// DefaultCompanyProfileID is the fixed key of the singleton company profile
const DefaultCompanyProfileID = "default_company_profile"

// CompanyProfile represents the operator's own business details
type CompanyProfile struct {
	ID                 string `json:"id"`
	Logo               string `json:"logo,omitempty"` // data URL
	CompanyName        string `json:"companyName" validate:"required"`
	Address            string `json:"address" validate:"required"`
	ContactNumber      string `json:"contactNumber" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Website            string `json:"website,omitempty" validate:"omitempty,url"`
	TaxID              string `json:"taxId" validate:"required"`
	UpiID              string `json:"upiId" validate:"required"`
	TermsAndConditions string `json:"termsAndConditions,omitempty"`
}

// Snapshot returns an independent copy for embedding in an invoice
func (p *CompanyProfile) Snapshot() *CompanyProfile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
