package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupCartTest(t *testing.T) (*gorm.DB, *CartService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Product{}, &model.Cart{}, &model.CartItem{})

	svc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		"UAH",
	)
	return db, svc
}

func sessionKey(sid string) dto.CartKey {
	return dto.CartKey{SessionID: sid}
}

// ==================== 单元测试 ====================

func TestCartService_KeyValidation(t *testing.T) {
	_, svc := setupCartTest(t)
	ctx := context.Background()

	// 两个键都缺
	if _, err := svc.Get(ctx, dto.CartKey{}); !apperr.IsInvalid(err) {
		t.Errorf("空键 err = %v, want ErrInvalid", err)
	}

	// 两个键都给
	if _, err := svc.Get(ctx, dto.CartKey{SessionID: "s1", UserID: 7}); !apperr.IsInvalid(err) {
		t.Errorf("双键 err = %v, want ErrInvalid", err)
	}
}

func TestCartService_GetMissingReturnsEmptyView(t *testing.T) {
	_, svc := setupCartTest(t)

	view, err := svc.Get(context.Background(), sessionKey("nope"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 0 || view.Subtotal != 0 {
		t.Errorf("不存在的购物车应返回空视图: %+v", view)
	}
}

func TestCartService_AddItemMerges(t *testing.T) {
	db, svc := setupCartTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 50, IsActive: true})

	key := sessionKey("s1")
	if _, err := svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: key, ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	// 同商品同变体合并数量
	view, err := svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: key, ProductID: 1, Quantity: 3})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", view.Items[0].Quantity)
	}
	if view.Subtotal != 250 {
		t.Errorf("subtotal = %.2f, want 250", view.Subtotal)
	}

	// 不同变体单独成行
	view, err = svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: key, ProductID: 1, Quantity: 1, Variant: "XL"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(view.Items) != 2 {
		t.Errorf("items = %d, want 2", len(view.Items))
	}
}

func TestCartService_AddInactiveProduct(t *testing.T) {
	db, svc := setupCartTest(t)

	db.Create(&model.Product{Name: "Скрытый", Slug: "skrytyy", PriceCurrent: 10, IsActive: true})
	db.Model(&model.Product{}).Where("id = ?", 1).Update("is_active", false)

	_, err := svc.AddItem(context.Background(), &dto.AddCartItemRequest{
		CartKey: sessionKey("s1"), ProductID: 1, Quantity: 1,
	})
	if !apperr.IsInvalid(err) {
		t.Errorf("下架商品 err = %v, want ErrInvalid", err)
	}
}

func TestCartService_UpdateItemZeroDeletes(t *testing.T) {
	db, svc := setupCartTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 50, IsActive: true})

	key := sessionKey("s1")
	if _, err := svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: key, ProductID: 1, Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// 数量置 0 等同删除
	view, err := svc.UpdateItem(ctx, 1, &dto.UpdateCartItemRequest{CartKey: key, Quantity: 0})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("items = %d, want 0", len(view.Items))
	}

	var count int64
	db.Model(&model.CartItem{}).Count(&count)
	if count != 0 {
		t.Errorf("cart_items count = %d, want 0", count)
	}
}

func TestCartService_ExpiredCartRecreated(t *testing.T) {
	db, svc := setupCartTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 50, IsActive: true})

	// 过期购物车
	sid := "s1"
	expired := &model.Cart{SessionID: &sid, ExpiresAt: time.Now().Add(-time.Hour)}
	db.Create(expired)
	db.Create(&model.CartItem{CartID: expired.ID, ProductID: 1, Quantity: 9})

	// 过期视图为空
	view, err := svc.Get(ctx, sessionKey(sid))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("过期购物车应返回空视图, items = %d", len(view.Items))
	}

	// 再次加购时先删过期车再新建
	view, err = svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: sessionKey(sid), ProductID: 1, Quantity: 1})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Errorf("新车不应继承过期行: %+v", view.Items)
	}

	var carts int64
	db.Model(&model.Cart{}).Count(&carts)
	if carts != 1 {
		t.Errorf("carts count = %d, want 1", carts)
	}
}

func TestCartService_InactiveProductDroppedFromView(t *testing.T) {
	db, svc := setupCartTest(t)
	ctx := context.Background()

	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 50, IsActive: true})

	key := sessionKey("s1")
	if _, err := svc.AddItem(ctx, &dto.AddCartItemRequest{CartKey: key, ProductID: 1, Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	// 加购后商品被下架，视图静默剔除该行
	db.Model(&model.Product{}).Where("id = ?", 1).Update("is_active", false)

	view, err := svc.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 0 {
		t.Errorf("下架商品行应被剔除, items = %d", len(view.Items))
	}
}

func TestCartService_PurgeExpired(t *testing.T) {
	db, svc := setupCartTest(t)

	s1, s2 := "old", "fresh"
	old := &model.Cart{SessionID: &s1, ExpiresAt: time.Now().Add(-time.Hour)}
	db.Create(old)
	db.Create(&model.CartItem{CartID: old.ID, ProductID: 1, Quantity: 1})
	db.Create(&model.Cart{SessionID: &s2, ExpiresAt: time.Now().Add(time.Hour)})

	deleted, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	var carts, items int64
	db.Model(&model.Cart{}).Count(&carts)
	db.Model(&model.CartItem{}).Count(&items)
	if carts != 1 || items != 0 {
		t.Errorf("carts = %d items = %d, want 1/0", carts, items)
	}
}
