package models

type User struct {
	BaseModel
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Name             string     `json:"name"`
	Role             UserRole   `gorm:"type:varchar(20);not null;index" json:"role"`
	Status           UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	AutoArrangeOptIn bool       `gorm:"default:false;index" json:"auto_arrange_opt_in"`

	InvestorProfile *InvestorProfile `gorm:"foreignKey:UserID" json:"-"`
	CompanyProfile  *CompanyProfile  `gorm:"foreignKey:UserID" json:"-"`
}

// OptedInUser is the projection the scheduler enumerates.
type OptedInUser struct {
	ID    string
	Email string
	Name  string
	Role  UserRole
}
