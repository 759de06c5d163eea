package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is the products table. Nullable columns are pointers so that
// absent form values are stored as NULL.
type Product struct {
	Base
	Name         *string             `gorm:"size:255" json:"name"`
	Department   *string             `gorm:"size:100" json:"department"`
	Category     *string             `gorm:"size:100" json:"category"`
	Subcategory  *string             `gorm:"size:100" json:"subcategory"`
	FullCategory string              `gorm:"size:255" json:"fullCategory"`
	Brand        *string             `gorm:"size:255" json:"brand"`
	ActualPrice  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"actualPrice"`
	Discount     *int                `json:"discount"`
	FinalPrice   decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"finalPrice"`
	Stock        *int                `json:"stock"`
	Description  *string             `gorm:"type:text" json:"description"`
	Attributes   datatypes.JSONMap   `json:"attributes"`
	Images       ImageList           `json:"images"`
}
