package entity

// Medicine is a pharmacy catalog entry
type Medicine struct {
	ID       int64   `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"size:255;not null;index" json:"name"`
	Price    float64 `gorm:"type:decimal(15,2);default:0" json:"price"`
	Quantity int     `gorm:"default:0" json:"quantity"`
}

// TableName returns the table name for the Medicine model
func (Medicine) TableName() string {
	return "medicines"
}

// LabTest is a laboratory catalog entry
type LabTest struct {
	ID    int64   `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:255;not null;index" json:"name"`
	Price float64 `gorm:"type:decimal(15,2);default:0" json:"price"`
}

// TableName returns the table name for the LabTest model
func (LabTest) TableName() string {
	return "lab_tests"
}

// RadiologyService is a radiology catalog entry
type RadiologyService struct {
	ID    int64   `gorm:"primaryKey" json:"id"`
	Name  string  `gorm:"size:255;not null;index" json:"name"`
	Price float64 `gorm:"type:decimal(15,2);default:0" json:"price"`
}

// TableName returns the table name for the RadiologyService model
func (RadiologyService) TableName() string {
	return "radiology_services"
}
