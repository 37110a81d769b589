package dto

import "github.com/fekuna/omnipos-catalog-service/internal/model"

type AttributeInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"` // Derived from Name when empty
}

type TermInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

type AttributeDetail struct {
	model.Attribute
	Terms []model.Term `json:"terms"`
}

type SlugCheckQuery struct {
	Slug      string `form:"slug" binding:"required"`
	ExcludeID string `form:"excludeId"`
}
