package repository

import (
	"context"

	"github.com/qchem/gausscat/internal/datastore/entities"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	entityUser = "User"
	entityRole = "Role"
)

// UserRepository provides access to users and their roles and claims.
type UserRepository interface {
	// Create inserts a user. Returns ErrDuplicateKey if the normalized name is taken.
	Create(ctx context.Context, user *entities.User) error
	// GetByID returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*entities.User, error)
	// GetByNormalizedName returns ErrNotFound if absent.
	GetByNormalizedName(ctx context.Context, normalizedName string) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	// Update saves every column of user. Returns ErrNotFound if absent.
	Update(ctx context.Context, user *entities.User) error
	// Delete removes the user with its role links and claims.
	Delete(ctx context.Context, id string) error

	GetRoles(ctx context.Context, userID string) ([]entities.Role, error)
	// AddRole returns ErrDuplicateKey if the user is already in the role.
	AddRole(ctx context.Context, userID, roleID string) error
	// RemoveRole returns ErrNotFound if the user is not in the role.
	RemoveRole(ctx context.Context, userID, roleID string) error

	GetClaims(ctx context.Context, userID string) ([]entities.UserClaim, error)
	AddClaim(ctx context.Context, claim *entities.UserClaim) error
	// RemoveClaim removes every claim with the type and value.
	// Returns ErrNotFound if there was none.
	RemoveClaim(ctx context.Context, userID, claimType, claimValue string) error
}

// RoleRepository provides access to roles and their claims.
type RoleRepository interface {
	Create(ctx context.Context, role *entities.Role) error
	GetByID(ctx context.Context, id string) (*entities.Role, error)
	GetByNormalizedName(ctx context.Context, normalizedName string) (*entities.Role, error)
	List(ctx context.Context) ([]entities.Role, error)
	Update(ctx context.Context, role *entities.Role) error
	// Delete removes the role with its user links and claims.
	Delete(ctx context.Context, id string) error

	GetClaims(ctx context.Context, roleID string) ([]entities.RoleClaim, error)
	AddClaim(ctx context.Context, claim *entities.RoleClaim) error
	RemoveClaim(ctx context.Context, roleID, claimType, claimValue string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	return translate(err, entityUser, opCreate, user.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err, entityUser, opRead, id)
	}
	return &user, nil
}

func (r *userRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("normalized_user_name = ?", normalizedName).First(&user).Error
	if err != nil {
		return nil, translate(err, entityUser, opRead, normalizedName)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]entities.User, error) {
	var users []entities.User
	if err := r.db.WithContext(ctx).Order("normalized_user_name ASC").Find(&users).Error; err != nil {
		return nil, translate(err, entityUser, opRead, nil)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *entities.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &entities.User{}, entityUser, user.ID); err != nil {
			return err
		}
		return tx.Model(&entities.User{}).
			Where("id = ?", user.ID).
			Select("*").Omit("id", "created_at", clause.Associations).
			Updates(user).Error
	})
	return translate(err, entityUser, opUpdate, user.ID)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entities.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&entities.UserClaim{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityUser, id)
		}
		return nil
	})
	return translate(err, entityUser, opDelete, id)
}

func (r *userRepository) GetRoles(ctx context.Context, userID string) ([]entities.Role, error) {
	var roles []entities.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.normalized_name ASC").
		Find(&roles).Error
	if err != nil {
		return nil, translate(err, entityUser, opRead, userID)
	}
	return roles, nil
}

func (r *userRepository) AddRole(ctx context.Context, userID, roleID string) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).
		Create(&entities.UserRole{UserID: userID, RoleID: roleID}).Error
	return translate(err, entityUser, opCreate, userID)
}

func (r *userRepository) RemoveRole(ctx context.Context, userID, roleID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&entities.UserRole{})
	if result.Error != nil {
		return translate(result.Error, entityUser, opDelete, userID)
	}
	if result.RowsAffected == 0 {
		return notFoundError("UserRole", roleID)
	}
	return nil
}

func (r *userRepository) GetClaims(ctx context.Context, userID string) ([]entities.UserClaim, error) {
	var claims []entities.UserClaim
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&claims).Error
	if err != nil {
		return nil, translate(err, entityUser, opRead, userID)
	}
	return claims, nil
}

func (r *userRepository) AddClaim(ctx context.Context, claim *entities.UserClaim) error {
	return translate(r.db.WithContext(ctx).Create(claim).Error, entityUser, opCreate, claim.UserID)
}

func (r *userRepository) RemoveClaim(ctx context.Context, userID, claimType, claimValue string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND claim_type = ? AND claim_value = ?", userID, claimType, claimValue).
		Delete(&entities.UserClaim{})
	if result.Error != nil {
		return translate(result.Error, entityUser, opDelete, userID)
	}
	if result.RowsAffected == 0 {
		return notFoundError("UserClaim", claimType)
	}
	return nil
}

type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *entities.Role) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error
	return translate(err, entityRole, opCreate, role.ID)
}

func (r *roleRepository) GetByID(ctx context.Context, id string) (*entities.Role, error) {
	var role entities.Role
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error; err != nil {
		return nil, translate(err, entityRole, opRead, id)
	}
	return &role, nil
}

func (r *roleRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*entities.Role, error) {
	var role entities.Role
	err := r.db.WithContext(ctx).Where("normalized_name = ?", normalizedName).First(&role).Error
	if err != nil {
		return nil, translate(err, entityRole, opRead, normalizedName)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]entities.Role, error) {
	var roles []entities.Role
	if err := r.db.WithContext(ctx).Order("normalized_name ASC").Find(&roles).Error; err != nil {
		return nil, translate(err, entityRole, opRead, nil)
	}
	return roles, nil
}

func (r *roleRepository) Update(ctx context.Context, role *entities.Role) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &entities.Role{}, entityRole, role.ID); err != nil {
			return err
		}
		return tx.Model(&entities.Role{}).
			Where("id = ?", role.ID).
			Select("name", "normalized_name").
			Updates(role).Error
	})
	return translate(err, entityRole, opUpdate, role.ID)
}

func (r *roleRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&entities.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&entities.RoleClaim{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&entities.Role{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundError(entityRole, id)
		}
		return nil
	})
	return translate(err, entityRole, opDelete, id)
}

func (r *roleRepository) GetClaims(ctx context.Context, roleID string) ([]entities.RoleClaim, error) {
	var claims []entities.RoleClaim
	err := r.db.WithContext(ctx).Where("role_id = ?", roleID).Order("id ASC").Find(&claims).Error
	if err != nil {
		return nil, translate(err, entityRole, opRead, roleID)
	}
	return claims, nil
}

func (r *roleRepository) AddClaim(ctx context.Context, claim *entities.RoleClaim) error {
	return translate(r.db.WithContext(ctx).Create(claim).Error, entityRole, opCreate, claim.RoleID)
}

func (r *roleRepository) RemoveClaim(ctx context.Context, roleID, claimType, claimValue string) error {
	result := r.db.WithContext(ctx).
		Where("role_id = ? AND claim_type = ? AND claim_value = ?", roleID, claimType, claimValue).
		Delete(&entities.RoleClaim{})
	if result.Error != nil {
		return translate(result.Error, entityRole, opDelete, roleID)
	}
	if result.RowsAffected == 0 {
		return notFoundError("RoleClaim", claimType)
	}
	return nil
}

func mustExist(tx *gorm.DB, model any, entity, id string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFoundError(entity, id)
	}
	return nil
}
