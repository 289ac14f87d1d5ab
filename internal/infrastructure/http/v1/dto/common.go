package dto

import (
	"ganji/internal/core/apperror"
	"ganji/internal/core/id"
)

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID string `json:"id"`
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ParseOptionalID parses an optional id parameter named field.
func ParseOptionalID(field, value string) (*id.ID, error) {
	v, err := id.ParseOptional(value)
	if err != nil {
		return nil, apperror.NewValidation("invalid " + field).WithDetail(field, value)
	}
	return v, nil
}

// ParseID parses a required id parameter named field.
func ParseID(field, value string) (id.ID, error) {
	v, err := id.Parse(value)
	if err != nil {
		return id.Nil(), apperror.NewValidation("invalid " + field).WithDetail(field, value)
	}
	return v, nil
}
