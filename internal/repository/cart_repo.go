package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shop_admin_v1_202608/internal/model"
)

// ==================== 接口定义 ====================

// CartRepository 购物车仓储接口
type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	GetByID(ctx context.Context, id int64) (*model.Cart, error)
	GetBySessionID(ctx context.Context, sessionID string) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID int64) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, itemID int64) error
	ClearItems(ctx context.Context, cartID int64) error
	Delete(ctx context.Context, id int64) error
	DeleteBySessionID(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ==================== 实现 ====================

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepo{db: db}
}

func (r *cartRepo) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepo) GetByID(ctx context.Context, id int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Preload("Items").First(&cart, id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) GetBySessionID(ctx context.Context, sessionID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Preload("Items").
		Where("session_id = ?", sessionID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *cartRepo) GetByUserID(ctx context.Context, userID int64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save 保存购物车及其条目（全量关联保存）
func (r *cartRepo) Save(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error
}

func (r *cartRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Cart{}).Where("id = ?", id).Updates(fields).Error
}

func (r *cartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *cartRepo) UpdateItem(ctx context.Context, item *model.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *cartRepo) DeleteItem(ctx context.Context, itemID int64) error {
	return r.db.WithContext(ctx).Delete(&model.CartItem{}, itemID).Error
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&model.CartItem{}).Error
}

func (r *cartRepo) Delete(ctx context.Context, id int64) error {
	if err := r.ClearItems(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&model.Cart{}, id).Error
}

func (r *cartRepo) DeleteBySessionID(ctx context.Context, sessionID string) error {
	var cart model.Cart
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&cart).Error
	if err != nil {
		if IsRecordNotFound(err) {
			return nil
		}
		return err
	}
	return r.Delete(ctx, cart.ID)
}

// DeleteExpired 清理过期购物车，返回删除数量
func (r *cartRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Cart{}).
		Where("expires_at < ?", now).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Where("cart_id IN ?", ids).Delete(&model.CartItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Cart{})
	return result.RowsAffected, result.Error
}
