package service

import (
	"fmt"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// PageView is the visible slice of a collection plus navigation metadata.
type PageView[T any] struct {
	Items      []T               `json:"items"`
	Pagination models.Pagination `json:"pagination"`
}

// ErrInvalidPageSize is returned for page sizes below one.
var ErrInvalidPageSize = appErrors.Clone(appErrors.ErrConfiguration, "page size must be greater than zero")

// PageMeta computes navigation metadata for total records. page is clamped to [1, totalPages].
func PageMeta(total, page, pageSize int) (models.Pagination, error) {
	if pageSize <= 0 {
		return models.Pagination{}, appErrors.Wrap(fmt.Errorf("page size %d", pageSize), ErrInvalidPageSize.Code, ErrInvalidPageSize.Kind, ErrInvalidPageSize.Status, ErrInvalidPageSize.Message)
	}
	if total < 0 {
		total = 0
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// Paginate slices items client-side.
func Paginate[T any](items []T, page, pageSize int) (PageView[T], error) {
	meta, err := PageMeta(len(items), page, pageSize)
	if err != nil {
		return PageView[T]{}, err
	}
	start := (meta.Page - 1) * pageSize
	end := start + pageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	visible := make([]T, end-start)
	copy(visible, items[start:end])
	return PageView[T]{Items: visible, Pagination: meta}, nil
}
