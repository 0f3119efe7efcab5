package repository

import (
	"context"
	"errors"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// EmailTaken also counts soft-deleted users; their emails stay reserved.
	EmailTaken(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, page model.PageRequest) ([]model.User, int64, error)
	// EnsureUser returns the user with this email, restoring it when soft-deleted and
	// creating it with the given role when missing.
	EnsureUser(ctx context.Context, email, fullName string, role model.Role) (*model.User, bool, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) WithTx(tx *gorm.DB) UserRepository {
	return &userRepo{tx}
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) List(ctx context.Context, page model.PageRequest) ([]model.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.User{})

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := query.Order("email ASC").Offset(page.Offset()).Limit(page.Limit()).Find(&users).Error
	return users, total, err
}

func (r *userRepo) EnsureUser(ctx context.Context, email, fullName string, role model.Role) (*model.User, bool, error) {
	var existing model.User
	err := r.db.WithContext(ctx).Unscoped().Where("email = ?", email).First(&existing).Error
	if err == nil {
		user := &existing
		if user.DeletedAt.Valid {
			if err := r.db.WithContext(ctx).Unscoped().Model(user).Update("deleted_at", nil).Error; err != nil {
				return nil, false, err
			}
			user.DeletedAt = gorm.DeletedAt{}
		}
		return user, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	user := &model.User{Email: email, FullName: fullName, Role: role, IsActive: true}
	if err := r.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
