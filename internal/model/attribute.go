package model

// Attribute is a tenant level product property such as "Color".
type Attribute struct {
	BaseModel
	OrganizationID string `db:"organization_id" json:"organizationId"`
	Name           string `db:"name" json:"name"`
	Slug           string `db:"slug" json:"slug"`
}

// Term is one value of an Attribute such as "Red".
type Term struct {
	BaseModel
	OrganizationID string `db:"organization_id" json:"organizationId"`
	AttributeID    string `db:"attribute_id" json:"attributeId"`
	Name           string `db:"name" json:"name"`
	Slug           string `db:"slug" json:"slug"`
}
