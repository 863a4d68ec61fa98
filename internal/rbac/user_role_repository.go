package rbac

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type UserRoleRepository interface {
	FindByUserID(ctx context.Context, userID string) ([]*model.UserRole, error)
	Create(ctx context.Context, userRole *model.UserRole) error
	Delete(ctx context.Context, userID string, roleID uint) (int64, error)
	DeleteByRoleID(ctx context.Context, roleID uint) error
}

type userRoleRepository struct {
	db *gorm.DB
}

func (r *userRoleRepository) FindByUserID(ctx context.Context, userID string) ([]*model.UserRole, error) {
	var assignments []*model.UserRole
	err := r.db.WithContext(ctx).Preload("Role").Where("user_id = ?", userID).Find(&assignments).Error
	return assignments, err
}

func (r *userRoleRepository) Create(ctx context.Context, userRole *model.UserRole) error {
	return r.db.WithContext(ctx).Create(userRole).Error
}

func (r *userRoleRepository) Delete(ctx context.Context, userID string, roleID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&model.UserRole{})
	return result.RowsAffected, result.Error
}

func (r *userRoleRepository) DeleteByRoleID(ctx context.Context, roleID uint) error {
	return r.db.WithContext(ctx).Where("role_id = ?", roleID).Delete(&model.UserRole{}).Error
}

func NewUserRoleRepository(db *gorm.DB) UserRoleRepository {
	return &userRoleRepository{db}
}
