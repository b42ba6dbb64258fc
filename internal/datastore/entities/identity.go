package entities

import "time"

// User is an account that can sign in to the API or the pages.
type User struct {
	ID                 string     `gorm:"primaryKey;size:36"`
	UserName           string     `gorm:"size:256;not null"`
	NormalizedUserName string     `gorm:"size:256;not null;uniqueIndex:idx_user_normalized_name"`
	Email              string     `gorm:"size:256"`
	NormalizedEmail    string     `gorm:"size:256;index"`
	PasswordHash       string     `gorm:"size:100;not null"`
	SecurityStamp      string     `gorm:"size:36;not null"`
	LockoutEnabled     bool       `gorm:"not null;default:true"`
	LockoutEnd         *time.Time `gorm:"default:null"`
	AccessFailedCount  int        `gorm:"not null;default:0"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`

	Claims []UserClaim `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string { return "users" }

// Role groups users for authorization.
type Role struct {
	ID             string `gorm:"primaryKey;size:36"`
	Name           string `gorm:"size:256;not null"`
	NormalizedName string `gorm:"size:256;not null;uniqueIndex:idx_role_normalized_name"`

	Claims []RoleClaim `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

func (Role) TableName() string { return "roles" }

// UserRole is the user/role join row.
type UserRole struct {
	UserID string `gorm:"primaryKey;size:36"`
	RoleID string `gorm:"primaryKey;size:36;index"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role *Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

func (UserRole) TableName() string { return "user_roles" }

// UserClaim is a type/value pair attached to a user.
type UserClaim struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     string `gorm:"size:36;not null;index"`
	ClaimType  string `gorm:"size:256;not null"`
	ClaimValue string `gorm:"size:1024"`
}

func (UserClaim) TableName() string { return "user_claims" }

// RoleClaim is a type/value pair attached to a role.
type RoleClaim struct {
	ID         uint   `gorm:"primaryKey"`
	RoleID     string `gorm:"size:36;not null;index"`
	ClaimType  string `gorm:"size:256;not null"`
	ClaimValue string `gorm:"size:1024"`
}

func (RoleClaim) TableName() string { return "role_claims" }
