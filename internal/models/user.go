package models

// User is an application user created on first successful sign-in.
// The email is the external identity key; users are never deleted or
// mutated by the application after creation.
type User struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Name    string `gorm:"size:256;not null"`
	Email   string `gorm:"size:256;not null;uniqueIndex"`
	Picture string `gorm:"size:512"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
