package dto

// StockLevelInput is the desired state of one country's stock row.
type StockLevelInput struct {
	CountryCode    string `json:"countryCode" binding:"required"`
	StockLevel     int64  `json:"stockLevel"`
	Visibility     *bool  `json:"visibility"`  // Defaults to true
	ManageStock    *bool  `json:"manageStock"` // Defaults to true
	AllowBackorder bool   `json:"allowBackorder"`
}

type StockInput struct {
	VariantID string `json:"variantId" binding:"required"`
	StockLevelInput
}

type StockQuery struct {
	VariantID string `form:"variantId" binding:"required"`
}
