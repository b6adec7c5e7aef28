package models

// User roles. Admin is granted at registration time when the email
// matches the configured admin address; every other account is a customer.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents an account holder. The email doubles as the login key.
type User struct {
	ID           string `json:"id" gorm:"primaryKey;column:user_id;type:varchar(36)"`
	Name         string `json:"name" validate:"required,min=2,max=100"`
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"column:password_hash;type:varchar(255)"`
	Role         string `json:"role" gorm:"type:varchar(20);default:customer"`
	SavedAddress string `json:"saved_address" gorm:"column:saved_address;type:text"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
