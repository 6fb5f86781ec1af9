package service

import (
	"context"
	"fmt"
	"log"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/pkg/slug"
)

// CategoryService 分类服务：树形结构维护、slug 管理、排序
type CategoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
	storage     Storage // 可为 nil，删除分类时清理图片
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository, storage Storage) *CategoryService {
	return &CategoryService{repo: repo, productRepo: productRepo, storage: storage}
}

// ==================== 查询 ====================

// GetByID 按 ID 查询
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("category", id)
		}
		return nil, err
	}
	return category, nil
}

// GetBySlug 按 slug 查询
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*model.Category, error) {
	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("category", categorySlug)
		}
		return nil, err
	}
	return category, nil
}

// GetTree 获取完整分类森林，兄弟节点按 (sort_order, created_at) 排序
func (s *CategoryService) GetTree(ctx context.Context, includeInactive bool) ([]*dto.CategoryTree, error) {
	categories, err := s.repo.ListAll(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.CategoryTree, len(categories))
	for i := range categories {
		nodes[i] = &dto.CategoryTree{Category: categories[i], Children: []*dto.CategoryTree{}}
	}

	roots := BuildForest(nodes,
		func(n *dto.CategoryTree) int64 { return n.ID },
		func(n *dto.CategoryTree) *int64 { return n.ParentID },
		func(parent, child *dto.CategoryTree) { parent.Children = append(parent.Children, child) })

	return roots, nil
}

// GetSubtree 获取以 id 为根的子树
// 除主父边外，把 extra_parent_ids 指向本节点的分类也算作直接子节点
func (s *CategoryService) GetSubtree(ctx context.Context, id int64, includeInactive bool) (*dto.CategoryTree, error) {
	categories, err := s.repo.ListAll(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.CategoryTree, len(categories))
	for i := range categories {
		nodes[i] = &dto.CategoryTree{Category: categories[i], Children: []*dto.CategoryTree{}}
	}

	roots := BuildForest(nodes,
		func(n *dto.CategoryTree) int64 { return n.ID },
		func(n *dto.CategoryTree) *int64 { return n.ParentID },
		func(parent, child *dto.CategoryTree) { parent.Children = append(parent.Children, child) })

	node, ok := findSubtree(roots, id,
		func(n *dto.CategoryTree) int64 { return n.ID },
		func(n *dto.CategoryTree) []*dto.CategoryTree { return n.Children })
	if !ok {
		return nil, apperr.NotFoundf("category", id)
	}

	// 次级父边挂载，写入时已过滤自身与主父，不会重复
	for _, n := range nodes {
		if n.Category.HasExtraParent(id) {
			node.Children = append(node.Children, n)
		}
	}
	return node, nil
}

// List 分页列表
func (s *CategoryService) List(ctx context.Context, page, pageSize int, includeInactive bool) ([]model.Category, int64, error) {
	return s.repo.ListPaginated(ctx, page, pageSize, includeInactive)
}

// Search 按名称模糊搜索
func (s *CategoryService) Search(ctx context.Context, keyword string, includeInactive bool) ([]model.Category, error) {
	if keyword == "" {
		return nil, apperr.Invalidf("search keyword is empty")
	}
	return s.repo.Search(ctx, keyword, includeInactive)
}

// Stats 分类统计
func (s *CategoryService) Stats(ctx context.Context) (*repository.CategoryStats, error) {
	return s.repo.Stats(ctx)
}

// ==================== 写入 ====================

// Create 创建分类
func (s *CategoryService) Create(ctx context.Context, req *dto.CreateCategoryRequest) (*model.Category, error) {
	categorySlug, err := s.resolveSlug(ctx, req.Slug, req.Name, 0)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	extraParents, err := s.filterExtraParents(ctx, req.ExtraParentIDs, 0, req.ParentID)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:           req.Name,
		Slug:           categorySlug,
		ParentID:       req.ParentID,
		ExtraParentIDs: extraParents,
		SortOrder:      req.SortOrder,
		IsActive:       true,

		Description: req.Description,
		Image:       req.Image,
		Icon:        req.Icon,

		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		MetaKeywords:    req.MetaKeywords,
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, category); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("category slug %q already exists", categorySlug)
		}
		return nil, err
	}
	return category, nil
}

// Update 更新分类，换父时做环检测
func (s *CategoryService) Update(ctx context.Context, id int64, req *dto.UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != category.Slug {
		newSlug, err := s.resolveSlug(ctx, *req.Slug, category.Name, id)
		if err != nil {
			return nil, err
		}
		category.Slug = newSlug
	} else if req.Name != nil && req.Slug == nil {
		// 改名未带 slug 时跟随新名称，被占用则保留原 slug
		if candidate := slug.Generate(*req.Name); candidate != "" && candidate != category.Slug {
			taken, err := s.slugTakenByOther(ctx, candidate, id)
			if err != nil {
				return nil, err
			}
			if !taken {
				category.Slug = candidate
			}
		}
	}

	// 父节点变更
	if req.ClearParent {
		category.ParentID = nil
	} else if req.ParentID != nil {
		newParent := *req.ParentID
		if category.ParentID == nil || *category.ParentID != newParent {
			if _, err := s.GetByID(ctx, newParent); err != nil {
				return nil, err
			}
			cycle, err := wouldCreateCycle(ctx, id, newParent, s.lookupParent)
			if err != nil {
				return nil, err
			}
			if cycle {
				return nil, apperr.Invalidf("moving category %d under %d would create a cycle", id, newParent)
			}
			category.ParentID = &newParent
		}
	}

	if req.ExtraParentIDs != nil {
		extraParents, err := s.filterExtraParents(ctx, *req.ExtraParentIDs, id, category.ParentID)
		if err != nil {
			return nil, err
		}
		category.ExtraParentIDs = extraParents
	}

	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.Image != nil {
		category.Image = *req.Image
	}
	if req.Icon != nil {
		category.Icon = *req.Icon
	}
	if req.MetaTitle != nil {
		category.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		category.MetaDescription = *req.MetaDescription
	}
	if req.MetaKeywords != nil {
		category.MetaKeywords = *req.MetaKeywords
	}

	if err := s.repo.Update(ctx, category); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("category slug %q already exists", category.Slug)
		}
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，存在子分类（含次级父引用）或关联商品时拒绝
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.repo.CountByParent(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperr.Invalidf("category %d has %d child categories", id, children)
	}

	linked, err := s.repo.CountByExtraParent(ctx, id)
	if err != nil {
		return err
	}
	if linked > 0 {
		return apperr.Invalidf("category %d is listed as extra parent by %d categories", id, linked)
	}

	products, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if products > 0 {
		return apperr.Invalidf("category %d has %d products", id, products)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// 图片清理尽力而为，失败只记录日志
	if s.storage != nil && category.Image != "" {
		prefix := fmt.Sprintf("categories/%d/", id)
		if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
			log.Printf("[CategoryService] 清理分类 %d 图片失败: %v", id, err)
		}
	}
	return nil
}

// Reorder 批量调整排序
func (s *CategoryService) Reorder(ctx context.Context, items []dto.SortItem) error {
	if len(items) == 0 {
		return apperr.Invalidf("reorder items are empty")
	}
	updates := make([]repository.SortUpdate, len(items))
	for i, item := range items {
		updates[i] = repository.SortUpdate{ID: item.ID, SortOrder: item.SortOrder}
	}
	return s.repo.UpdateSortOrders(ctx, updates)
}

// ==================== 内部辅助 ====================

// lookupParent 环检测用的父链查询
func (s *CategoryService) lookupParent(ctx context.Context, id int64) (*int64, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// 父链断裂视为到根
			return nil, nil
		}
		return nil, err
	}
	return category.ParentID, nil
}

// resolveSlug 确定最终 slug：显式给定时校验格式，未给定时由名称生成；
// 两种来源都要求未被占用（商品才做自动避让，分类不做）
func (s *CategoryService) resolveSlug(ctx context.Context, explicit, name string, selfID int64) (string, error) {
	candidate := explicit
	if candidate != "" {
		if !slug.IsValid(candidate) {
			return "", apperr.Invalidf("invalid slug %q", candidate)
		}
	} else {
		candidate = slug.Generate(name)
		if candidate == "" {
			return "", apperr.Invalidf("cannot derive slug from name %q", name)
		}
	}

	taken, err := s.slugTakenByOther(ctx, candidate, selfID)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.Conflictf("category slug %q already exists", candidate)
	}
	return candidate, nil
}

func (s *CategoryService) slugTakenByOther(ctx context.Context, candidate string, selfID int64) (bool, error) {
	existing, err := s.repo.GetBySlug(ctx, candidate)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != selfID, nil
}

// filterExtraParents 过滤次级父分类：去掉自身与主父，校验存在性，去重
func (s *CategoryService) filterExtraParents(ctx context.Context, ids []int64, selfID int64, parentID *int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == selfID {
			continue
		}
		if parentID != nil && id == *parentID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		if _, err := s.GetByID(ctx, id); err != nil {
			return nil, err
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result, nil
}
