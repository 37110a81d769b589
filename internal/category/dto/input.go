package dto

type CategoryInput struct {
	Name     string  `json:"name" binding:"required"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"` // Nil or empty means root
	Image    *string `json:"image"`
}

type CategoryFilters struct {
	Tree bool `form:"tree"` // Nested children instead of a flat list with levels
}

type SlugCheckQuery struct {
	Slug      string `form:"slug" binding:"required"`
	ExcludeID string `form:"excludeId"`
}
