package model

// swagger:model Category
type Category struct {
	BaseModel
	Name        string `gorm:"size:100;unique;not null" json:"name"`
	Slug        string `gorm:"size:100;index" json:"slug"`
	Description string `gorm:"size:500" json:"description"`
}

func (Category) TableName() string {
	return "categories"
}
