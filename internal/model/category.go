package model

type Category struct {
	BaseModel
	OrganizationID string     `db:"organization_id" json:"organizationId"`
	ParentID       *string    `db:"parent_id" json:"parentId"` // Nullable
	Name           string     `db:"name" json:"name"`
	Slug           string     `db:"slug" json:"slug"`
	ImageURL       *string    `db:"image_url" json:"image,omitempty"`
	Level          int        `db:"-" json:"level"`              // Depth from the nearest root, set when flattening
	Children       []Category `db:"-" json:"children,omitempty"` // For tree structure, not in DB
}
