package models

// User is both the authentication identity and the profile shown to other
// participants. Role is immutable through profile updates; only an
// administrator may change it.
type User struct {
	BaseModel
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(30);not null" json:"role"`
	FullName     string   `gorm:"not null" json:"full_name"`
	CompanyName  *string  `json:"company_name,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
}
