package service

import (
	"context"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

func setupPricingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Product{})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, p *model.Product) *model.Product {
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("创建商品失败: %v", err)
	}
	return p
}

// ==================== 单元测试 ====================

func TestPricingEngine_PriceItems(t *testing.T) {
	db := setupPricingTestDB(t)
	engine := NewPricingEngine(repository.NewProductRepository(db), "UAH")

	seedProduct(t, db, &model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 100.50, IsActive: true})
	seedProduct(t, db, &model.Product{Name: "Кукла", Slug: "kukla", PriceCurrent: 33.33, IsActive: true})

	result, err := engine.PriceItems(context.Background(), []dto.OrderItemInput{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
	})
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}

	if len(result.Lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(result.Lines))
	}
	if result.Lines[0].LineTotal != 201.00 {
		t.Errorf("line 0 total = %.2f, want 201.00", result.Lines[0].LineTotal)
	}
	if result.Lines[1].LineTotal != 99.99 {
		t.Errorf("line 1 total = %.2f, want 99.99", result.Lines[1].LineTotal)
	}
	if result.Subtotal != 300.99 {
		t.Errorf("subtotal = %.2f, want 300.99", result.Subtotal)
	}
}

func TestPricingEngine_VariantPrice(t *testing.T) {
	db := setupPricingTestDB(t)
	engine := NewPricingEngine(repository.NewProductRepository(db), "UAH")

	seedProduct(t, db, &model.Product{
		Name: "Футболка", Slug: "futbolka", PriceCurrent: 200, IsActive: true,
		Variants: []model.ProductVariant{
			{Name: "XL", Price: model.ProductPrice{Current: 250}},
			{Name: "S", Price: model.ProductPrice{}},
		},
	})

	// 变体自有价格
	result, err := engine.PriceItems(context.Background(), []dto.OrderItemInput{
		{ProductID: 1, Quantity: 1, Variant: "XL"},
	})
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if result.Lines[0].UnitPrice != 250 {
		t.Errorf("unit price = %.2f, want 250", result.Lines[0].UnitPrice)
	}

	// 变体未定价时回退商品价
	result, err = engine.PriceItems(context.Background(), []dto.OrderItemInput{
		{ProductID: 1, Quantity: 1, Variant: "S"},
	})
	if err != nil {
		t.Fatalf("PriceItems: %v", err)
	}
	if result.Lines[0].UnitPrice != 200 {
		t.Errorf("unit price = %.2f, want 200", result.Lines[0].UnitPrice)
	}
}

func TestPricingEngine_AllOrNothing(t *testing.T) {
	db := setupPricingTestDB(t)
	engine := NewPricingEngine(repository.NewProductRepository(db), "UAH")

	seedProduct(t, db, &model.Product{Name: "Активный", Slug: "aktivnyy", PriceCurrent: 10, IsActive: true})
	seedProduct(t, db, &model.Product{Name: "Скрытый", Slug: "skrytyy", PriceCurrent: 20, IsActive: true})
	// IsActive 带 default:true，零值写入会被数据库默认值顶掉，这里显式置为下架
	db.Model(&model.Product{}).Where("id = ?", 2).Update("is_active", false)

	// 下架商品 + 不存在的商品：整单失败，错误里列出全部问题 ID
	_, err := engine.PriceItems(context.Background(), []dto.OrderItemInput{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
		{ProductID: 99, Quantity: 1},
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), "2 (inactive)") || !strings.Contains(err.Error(), "99 (not found)") {
		t.Errorf("错误信息应列出全部不可用商品: %v", err)
	}
}

func TestPricingEngine_InvalidQuantity(t *testing.T) {
	db := setupPricingTestDB(t)
	engine := NewPricingEngine(repository.NewProductRepository(db), "UAH")

	_, err := engine.PriceItems(context.Background(), []dto.OrderItemInput{
		{ProductID: 1, Quantity: 0},
	})
	if !apperr.IsInvalid(err) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}

	_, err = engine.PriceItems(context.Background(), nil)
	if !apperr.IsInvalid(err) {
		t.Fatalf("空订单 err = %v, want ErrInvalid", err)
	}
}
