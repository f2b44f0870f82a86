package domain

// Item is a physical garment owned by exactly one tenant. Rental items are
// the unit the availability checker reasons about.
type Item struct {
	ID        int32  `json:"id"`
	TenantID  int32  `json:"tenant_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	ForSale   bool   `json:"for_sale"`
	ForRent   bool   `json:"for_rent"`
	CreatedOn string `json:"created_on"`
	UpdatedOn string `json:"updated_on"`
}
