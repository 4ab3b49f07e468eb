package models

// Category is a named grouping for items. Categories are static reference
// data: they are created by the seed command only, and there is no
// user-facing route to mutate them.
type Category struct {
	ID    uint64 `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"size:120;not null"`
	Items []Item `gorm:"foreignKey:CategoryID"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}
