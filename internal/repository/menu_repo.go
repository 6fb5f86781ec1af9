package repository

import (
	"context"

	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// MenuRepository 菜单仓储接口
type MenuRepository interface {
	Create(ctx context.Context, menu *model.Menu) error
	GetByID(ctx context.Context, id int64) (*model.Menu, error)
	GetBySlug(ctx context.Context, slug string) (*model.Menu, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListAll(ctx context.Context, includeInactive bool) ([]model.Menu, error)
	Update(ctx context.Context, menu *model.Menu) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	CountByParent(ctx context.Context, parentID int64) (int64, error)
	UpdateSortOrders(ctx context.Context, updates []SortUpdate) error
}

// ==================== 实现 ====================

type menuRepo struct {
	db *gorm.DB
}

// NewMenuRepository 创建菜单仓储
func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepo{db: db}
}

func (r *menuRepo) Create(ctx context.Context, menu *model.Menu) error {
	return r.db.WithContext(ctx).Create(menu).Error
}

func (r *menuRepo) GetByID(ctx context.Context, id int64) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithContext(ctx).First(&menu, id).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepo) GetBySlug(ctx context.Context, slug string) (*model.Menu, error) {
	var menu model.Menu
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Menu{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *menuRepo) ListAll(ctx context.Context, includeInactive bool) ([]model.Menu, error) {
	var menus []model.Menu
	db := r.db.WithContext(ctx).Model(&model.Menu{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("sort_order ASC, created_at ASC").Find(&menus).Error
	return menus, err
}

func (r *menuRepo) Update(ctx context.Context, menu *model.Menu) error {
	return r.db.WithContext(ctx).Save(menu).Error
}

func (r *menuRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", id).Updates(fields).Error
}

func (r *menuRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Menu{}, id).Error
}

func (r *menuRepo) CountByParent(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Menu{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

// UpdateSortOrders 批量更新排序，逐条执行，尽力而为
func (r *menuRepo) UpdateSortOrders(ctx context.Context, updates []SortUpdate) error {
	var firstErr error
	for _, u := range updates {
		err := r.db.WithContext(ctx).Model(&model.Menu{}).
			Where("id = ?", u.ID).
			Update("sort_order", u.SortOrder).Error
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
