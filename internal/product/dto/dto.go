package dto

import "github.com/avelia/catalog-service/internal/model"

// Page is the paginate result envelope: Items is the total matching row
// count, Pages = ceil(Items/limit).
type Page struct {
	Data  []model.Product `json:"data"`
	Items int             `json:"items"`
	Pages int             `json:"pages"`
}

type DeleteResult struct {
	Success   bool   `json:"success"`
	DeletedID string `json:"deleted_id"`
}
