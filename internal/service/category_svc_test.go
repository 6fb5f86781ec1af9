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

func setupCategoryTest(t *testing.T) (*gorm.DB, *CategoryService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	db.AutoMigrate(&model.Category{}, &model.Product{})

	svc := NewCategoryService(
		repository.NewCategoryRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
	return db, svc
}

func mustCreateCategory(t *testing.T, svc *CategoryService, req *dto.CreateCategoryRequest) *model.Category {
	category, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("创建分类 %q 失败: %v", req.Name, err)
	}
	return category
}

// ==================== 单元测试 ====================

func TestCategoryService_SlugGenerated(t *testing.T) {
	_, svc := setupCategoryTest(t)

	category := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Детская одежда"})
	if category.Slug != "detskaya-odezhda" {
		t.Errorf("slug = %q, want detskaya-odezhda", category.Slug)
	}

	// 同名分类生成同一 slug，直接冲突而不避让（商品才自动追加后缀）
	_, err := svc.Create(context.Background(), &dto.CreateCategoryRequest{Name: "Детская одежда"})
	if !apperr.IsConflict(err) {
		t.Errorf("同名分类 err = %v, want ErrConflict", err)
	}
}

func TestCategoryService_RenameFollowsSlug(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	category := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Старое имя"})
	if category.Slug != "staroe-imya" {
		t.Fatalf("slug = %q, want staroe-imya", category.Slug)
	}

	// 改名未带 slug：slug 跟随新名称
	newName := "Новое имя"
	updated, err := svc.Update(ctx, category.ID, &dto.UpdateCategoryRequest{Name: &newName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "novoe-imya" {
		t.Errorf("slug = %q, want novoe-imya", updated.Slug)
	}

	// 新名称对应的 slug 被占用时保留原 slug
	mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Занято", Slug: "zanyatoe-imya"})
	takenName := "Занятое имя"
	updated, err = svc.Update(ctx, category.ID, &dto.UpdateCategoryRequest{Name: &takenName})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "novoe-imya" {
		t.Errorf("slug = %q, 占用时应保留原值 novoe-imya", updated.Slug)
	}
}

func TestCategoryService_ExplicitSlug(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Одежда", Slug: "clothes"})

	// 显式 slug 冲突直接报错，不自动避让
	_, err := svc.Create(ctx, &dto.CreateCategoryRequest{Name: "Другое", Slug: "clothes"})
	if !apperr.IsConflict(err) {
		t.Errorf("冲突 slug err = %v, want ErrConflict", err)
	}

	// 非法格式
	_, err = svc.Create(ctx, &dto.CreateCategoryRequest{Name: "Другое", Slug: "Bad Slug!"})
	if !apperr.IsInvalid(err) {
		t.Errorf("非法 slug err = %v, want ErrInvalid", err)
	}
}

func TestCategoryService_CycleRejected(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Root"})
	child := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Child", ParentID: &root.ID})
	grand := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Grand", ParentID: &child.ID})

	// 把根挂到孙子下面，成环
	_, err := svc.Update(ctx, root.ID, &dto.UpdateCategoryRequest{ParentID: &grand.ID})
	if !apperr.IsInvalid(err) {
		t.Errorf("成环换父 err = %v, want ErrInvalid", err)
	}

	// 自引用
	_, err = svc.Update(ctx, child.ID, &dto.UpdateCategoryRequest{ParentID: &child.ID})
	if !apperr.IsInvalid(err) {
		t.Errorf("自引用 err = %v, want ErrInvalid", err)
	}

	// 合法换父
	updated, err := svc.Update(ctx, grand.ID, &dto.UpdateCategoryRequest{ParentID: &root.ID})
	if err != nil {
		t.Fatalf("合法换父失败: %v", err)
	}
	if updated.ParentID == nil || *updated.ParentID != root.ID {
		t.Errorf("parent = %v, want %d", updated.ParentID, root.ID)
	}
}

func TestCategoryService_ClearParent(t *testing.T) {
	_, svc := setupCategoryTest(t)

	root := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Root"})
	child := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Child", ParentID: &root.ID})

	updated, err := svc.Update(context.Background(), child.ID, &dto.UpdateCategoryRequest{ClearParent: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ParentID != nil {
		t.Errorf("parent = %v, want nil", updated.ParentID)
	}
}

func TestCategoryService_ExtraParentsFiltered(t *testing.T) {
	_, svc := setupCategoryTest(t)

	root := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Root"})
	other := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Other"})

	// 次级父里混入了主父和重复 ID，应被过滤
	category := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{
		Name:           "Cross",
		ParentID:       &root.ID,
		ExtraParentIDs: []int64{root.ID, other.ID, other.ID},
	})

	if len(category.ExtraParentIDs) != 1 || category.ExtraParentIDs[0] != other.ID {
		t.Errorf("extra parents = %v, want [%d]", category.ExtraParentIDs, other.ID)
	}

	// 不存在的次级父直接报错
	_, err := svc.Create(context.Background(), &dto.CreateCategoryRequest{
		Name:           "Broken",
		ExtraParentIDs: []int64{9999},
	})
	if !apperr.IsNotFound(err) {
		t.Errorf("不存在的次级父 err = %v, want ErrNotFound", err)
	}
}

func TestCategoryService_DeleteGuards(t *testing.T) {
	db, svc := setupCategoryTest(t)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Root"})
	child := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Child", ParentID: &root.ID})

	// 有子分类拒绝删除
	if err := svc.Delete(ctx, root.ID); !apperr.IsInvalid(err) {
		t.Errorf("删除有子分类 err = %v, want ErrInvalid", err)
	}

	// 仅被次级父引用同样拒绝删除
	extra := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Extra"})
	cross := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{
		Name:           "Cross",
		ParentID:       &root.ID,
		ExtraParentIDs: []int64{extra.ID},
	})
	if err := svc.Delete(ctx, extra.ID); !apperr.IsInvalid(err) {
		t.Errorf("删除被次级父引用的分类 err = %v, want ErrInvalid", err)
	}

	// 有商品拒绝删除
	db.Create(&model.Product{Name: "Мяч", Slug: "myach", PriceCurrent: 10, IsActive: true, CategoryID: &child.ID})
	if err := svc.Delete(ctx, child.ID); !apperr.IsInvalid(err) {
		t.Errorf("删除有商品的分类 err = %v, want ErrInvalid", err)
	}

	// 商品也算附加分类的引用
	db.Create(&model.Product{Name: "Кубик", Slug: "kubik", PriceCurrent: 5, IsActive: true, ExtraCategoryIDs: []int64{child.ID}})
	db.Model(&model.Product{}).Where("id = ?", 1).Update("category_id", nil)
	if err := svc.Delete(ctx, child.ID); !apperr.IsInvalid(err) {
		t.Errorf("删除被商品附加分类引用的分类 err = %v, want ErrInvalid", err)
	}

	// 清空引用后可删
	db.Model(&model.Product{}).Where("id = ?", 2).Update("extra_category_ids", nil)
	if err := svc.Delete(ctx, child.ID); err != nil {
		t.Fatalf("Delete child: %v", err)
	}
	if err := svc.Delete(ctx, cross.ID); err != nil {
		t.Fatalf("Delete cross: %v", err)
	}
	if err := svc.Delete(ctx, extra.ID); err != nil {
		t.Fatalf("Delete extra: %v", err)
	}
	if err := svc.Delete(ctx, root.ID); err != nil {
		t.Fatalf("Delete root: %v", err)
	}
}

func TestCategoryService_TreeAndSubtree(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	root := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "Root"})
	a := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "A", ParentID: &root.ID, SortOrder: 2})
	b := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "B", ParentID: &root.ID, SortOrder: 1})
	mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "A1", ParentID: &a.ID})

	tree, err := svc.GetTree(ctx, false)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(tree) != 1 {
		t.Fatalf("roots = %d, want 1", len(tree))
	}
	if len(tree[0].Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(tree[0].Children))
	}
	// 兄弟节点按 sort_order 排序
	if tree[0].Children[0].ID != b.ID {
		t.Errorf("first child = %d, want %d (sort_order 较小)", tree[0].Children[0].ID, b.ID)
	}

	subtree, err := svc.GetSubtree(ctx, a.ID, false)
	if err != nil {
		t.Fatalf("GetSubtree: %v", err)
	}
	if subtree.ID != a.ID || len(subtree.Children) != 1 {
		t.Errorf("subtree = %d (%d children), want %d (1 child)", subtree.ID, len(subtree.Children), a.ID)
	}

	if _, err := svc.GetSubtree(ctx, 9999, false); !apperr.IsNotFound(err) {
		t.Errorf("不存在的子树 err = %v, want ErrNotFound", err)
	}
}

func TestCategoryService_SubtreeExtraParentChildren(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	a := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "A"})
	b := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "B"})
	c := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{
		Name:           "C",
		ParentID:       &b.ID,
		ExtraParentIDs: []int64{a.ID},
	})

	// C 主父是 B，但把 A 列为次级父，A 的子树里也应出现 C
	subtree, err := svc.GetSubtree(ctx, a.ID, false)
	if err != nil {
		t.Fatalf("GetSubtree: %v", err)
	}
	if len(subtree.Children) != 1 || subtree.Children[0].ID != c.ID {
		t.Errorf("subtree children = %v, want [%d]", subtree.Children, c.ID)
	}

	// B 的子树照常包含 C
	subtree, err = svc.GetSubtree(ctx, b.ID, false)
	if err != nil {
		t.Fatalf("GetSubtree: %v", err)
	}
	if len(subtree.Children) != 1 || subtree.Children[0].ID != c.ID {
		t.Errorf("B subtree children = %v, want [%d]", subtree.Children, c.ID)
	}
}

func TestCategoryService_Reorder(t *testing.T) {
	_, svc := setupCategoryTest(t)
	ctx := context.Background()

	a := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "A", SortOrder: 1})
	b := mustCreateCategory(t, svc, &dto.CreateCategoryRequest{Name: "B", SortOrder: 2})

	err := svc.Reorder(ctx, []dto.SortItem{
		{ID: a.ID, SortOrder: 20},
		{ID: b.ID, SortOrder: 10},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	reloaded, _ := svc.GetByID(ctx, a.ID)
	if reloaded.SortOrder != 20 {
		t.Errorf("sort_order = %d, want 20", reloaded.SortOrder)
	}

	if err := svc.Reorder(ctx, nil); !apperr.IsInvalid(err) {
		t.Errorf("空重排 err = %v, want ErrInvalid", err)
	}
}
