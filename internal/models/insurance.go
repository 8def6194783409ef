package models

// InsurancePrediction stores one insurance cost estimation request together
// with its computed result. Rows are immutable after creation.
type InsurancePrediction struct {
	BaseModel
	UserID        string  `gorm:"size:36;index" json:"userId"`
	Age           int     `gorm:"not null" json:"age"`
	Sex           string  `gorm:"size:10;not null" json:"sex"`
	BMI           float64 `gorm:"column:bmi;not null" json:"bmi"`
	Children      int     `gorm:"default:0" json:"children"`
	Smoker        string  `gorm:"size:3;not null" json:"smoker"`
	Region        string  `gorm:"size:20;not null" json:"region"`
	PredictedCost float64 `gorm:"type:decimal(10,2)" json:"predictedCost"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
