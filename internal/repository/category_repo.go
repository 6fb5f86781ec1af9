package repository

import (
	"context"

	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CategoryStats 分类统计
type CategoryStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	Roots    int64 `json:"roots"`
	Children int64 `json:"children"`
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
	ListAll(ctx context.Context, includeInactive bool) ([]model.Category, error)
	ListPaginated(ctx context.Context, page, pageSize int, includeInactive bool) ([]model.Category, int64, error)
	Search(ctx context.Context, keyword string, includeInactive bool) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
	CountByParent(ctx context.Context, parentID int64) (int64, error)
	CountByExtraParent(ctx context.Context, parentID int64) (int64, error)
	UpdateSortOrders(ctx context.Context, updates []SortUpdate) error
	Stats(ctx context.Context) (*CategoryStats, error)
}

// ==================== 实现 ====================

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *categoryRepo) ListAll(ctx context.Context, includeInactive bool) ([]model.Category, error) {
	var categories []model.Category
	db := r.db.WithContext(ctx).Model(&model.Category{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("sort_order ASC, created_at ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) ListPaginated(ctx context.Context, page, pageSize int, includeInactive bool) ([]model.Category, int64, error) {
	var categories []model.Category
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Category{})
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	err := db.Order("sort_order ASC, created_at ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&categories).Error

	return categories, total, err
}

func (r *categoryRepo) Search(ctx context.Context, keyword string, includeInactive bool) ([]model.Category, error) {
	var categories []model.Category
	db := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("name ILIKE ?", "%"+keyword+"%")
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("sort_order ASC, created_at ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) Update(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).Updates(fields).Error
}

func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Category{}, id).Error
}

func (r *categoryRepo) CountByParent(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where("parent_id = ?", parentID).Count(&count).Error
	return count, err
}

// CountByExtraParent 统计把 parentID 列为次级父分类的节点数
func (r *categoryRepo) CountByExtraParent(ctx context.Context, parentID int64) (int64, error) {
	var count int64
	cond, arg := jsonArrayContainsClause(r.db, "extra_parent_ids", parentID)
	err := r.db.WithContext(ctx).Model(&model.Category{}).Where(cond, arg).Count(&count).Error
	return count, err
}

// UpdateSortOrders 批量更新排序，逐条执行，尽力而为（不保证原子）
func (r *categoryRepo) UpdateSortOrders(ctx context.Context, updates []SortUpdate) error {
	var firstErr error
	for _, u := range updates {
		err := r.db.WithContext(ctx).Model(&model.Category{}).
			Where("id = ?", u.ID).
			Update("sort_order", u.SortOrder).Error
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *categoryRepo) Stats(ctx context.Context) (*CategoryStats, error) {
	var stats CategoryStats
	db := r.db.WithContext(ctx).Model(&model.Category{})

	if err := db.Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("is_active = ?", true).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	stats.Inactive = stats.Total - stats.Active
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Where("parent_id IS NULL").Count(&stats.Roots).Error; err != nil {
		return nil, err
	}
	stats.Children = stats.Total - stats.Roots

	return &stats, nil
}
