package service

import (
	"context"
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

func setupMenuTest(t *testing.T) (*gorm.DB, *MenuService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Menu{}, &model.Category{})

	svc := NewMenuService(
		repository.NewMenuRepository(db),
		repository.NewCategoryRepository(db),
	)
	return db, svc
}

// ==================== 单元测试 ====================

func TestMenuService_CategoryTypeRequiresMatchingSlug(t *testing.T) {
	db, svc := setupMenuTest(t)
	ctx := context.Background()

	// category 类型但无对应分类
	_, err := svc.Create(ctx, &dto.CreateMenuRequest{
		Name: "Игрушки", Slug: "igrushki", Type: model.MenuTypeCategory,
	})
	if !apperr.IsInvalid(err) {
		t.Errorf("无对应分类 err = %v, want ErrInvalid", err)
	}

	// 建了分类之后可以创建
	db.Create(&model.Category{Name: "Игрушки", Slug: "igrushki", IsActive: true})
	menu, err := svc.Create(ctx, &dto.CreateMenuRequest{
		Name: "Игрушки", Slug: "igrushki", Type: model.MenuTypeCategory,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if menu.Type != model.MenuTypeCategory {
		t.Errorf("type = %q, want category", menu.Type)
	}

	// link 类型不做分类校验
	if _, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "О нас", URL: "/about"}); err != nil {
		t.Errorf("link 菜单创建失败: %v", err)
	}
}

func TestMenuService_DefaultTypeIsLink(t *testing.T) {
	_, svc := setupMenuTest(t)

	menu, err := svc.Create(context.Background(), &dto.CreateMenuRequest{Name: "Контакты"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if menu.Type != model.MenuTypeLink {
		t.Errorf("type = %q, want link", menu.Type)
	}
	if menu.Slug != "kontakty" {
		t.Errorf("slug = %q, want kontakty", menu.Slug)
	}

	// 同名菜单派生出同一 slug，直接冲突
	if _, err := svc.Create(context.Background(), &dto.CreateMenuRequest{Name: "Контакты"}); !apperr.IsConflict(err) {
		t.Errorf("同名菜单 err = %v, want ErrConflict", err)
	}
}

func TestMenuService_RenameFollowsSlug(t *testing.T) {
	_, svc := setupMenuTest(t)
	ctx := context.Background()

	menu, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "Доставка"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if menu.Slug != "dostavka" {
		t.Fatalf("slug = %q, want dostavka", menu.Slug)
	}

	newName := "Оплата"
	updated, err := svc.Update(ctx, menu.ID, &dto.UpdateMenuRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "oplata" {
		t.Errorf("slug = %q, want oplata", updated.Slug)
	}
}

func TestMenuService_CycleRejected(t *testing.T) {
	_, svc := setupMenuTest(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "Root"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	child, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "Child", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, root.ID, &dto.UpdateMenuRequest{ParentID: &child.ID}); !apperr.IsInvalid(err) {
		t.Errorf("成环换父 err = %v, want ErrInvalid", err)
	}
}

func TestMenuService_DeleteWithChildren(t *testing.T) {
	_, svc := setupMenuTest(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "Root"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	child, err := svc.Create(ctx, &dto.CreateMenuRequest{Name: "Child", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(ctx, root.ID); !apperr.IsInvalid(err) {
		t.Errorf("删除有子项 err = %v, want ErrInvalid", err)
	}
	if err := svc.Delete(ctx, child.ID); err != nil {
		t.Fatalf("Delete child: %v", err)
	}
	if err := svc.Delete(ctx, root.ID); err != nil {
		t.Fatalf("Delete root: %v", err)
	}
}
