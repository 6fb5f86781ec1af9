package service

import (
	"context"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
	"shop_admin_v1_202608/pkg/slug"
)

// MenuService 导航菜单服务，与分类共用同一套树形规则
type MenuService struct {
	repo         repository.MenuRepository
	categoryRepo repository.CategoryRepository
}

// NewMenuService 创建菜单服务
func NewMenuService(repo repository.MenuRepository, categoryRepo repository.CategoryRepository) *MenuService {
	return &MenuService{repo: repo, categoryRepo: categoryRepo}
}

// ==================== 查询 ====================

// GetByID 按 ID 查询
func (s *MenuService) GetByID(ctx context.Context, id int64) (*model.Menu, error) {
	menu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("menu", id)
		}
		return nil, err
	}
	return menu, nil
}

// GetBySlug 按 slug 查询
func (s *MenuService) GetBySlug(ctx context.Context, menuSlug string) (*model.Menu, error) {
	menu, err := s.repo.GetBySlug(ctx, menuSlug)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("menu", menuSlug)
		}
		return nil, err
	}
	return menu, nil
}

// GetTree 获取菜单森林
func (s *MenuService) GetTree(ctx context.Context, includeInactive bool) ([]*dto.MenuTree, error) {
	menus, err := s.repo.ListAll(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.MenuTree, len(menus))
	for i := range menus {
		nodes[i] = &dto.MenuTree{Menu: menus[i], Children: []*dto.MenuTree{}}
	}

	roots := BuildForest(nodes,
		func(n *dto.MenuTree) int64 { return n.ID },
		func(n *dto.MenuTree) *int64 { return n.ParentID },
		func(parent, child *dto.MenuTree) { parent.Children = append(parent.Children, child) })

	return roots, nil
}

// ==================== 写入 ====================

// Create 创建菜单项
func (s *MenuService) Create(ctx context.Context, req *dto.CreateMenuRequest) (*model.Menu, error) {
	menuSlug, err := s.resolveSlug(ctx, req.Slug, req.Name, 0)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	menuType := req.Type
	if menuType == "" {
		menuType = model.MenuTypeLink
	}

	// category 类型的菜单项，slug 必须指向已有分类
	if menuType == model.MenuTypeCategory {
		if _, err := s.categoryRepo.GetBySlug(ctx, menuSlug); err != nil {
			if repository.IsRecordNotFound(err) {
				return nil, apperr.Invalidf("menu slug %q does not match any category", menuSlug)
			}
			return nil, err
		}
	}

	menu := &model.Menu{
		Name:      req.Name,
		Slug:      menuSlug,
		ParentID:  req.ParentID,
		SortOrder: req.SortOrder,
		IsActive:  true,

		URL:         req.URL,
		Icon:        req.Icon,
		Description: req.Description,
		Type:        menuType,
		IsNewTab:    req.IsNewTab,
	}
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, menu); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("menu slug %q already exists", menuSlug)
		}
		return nil, err
	}
	return menu, nil
}

// Update 更新菜单项，换父时做环检测
func (s *MenuService) Update(ctx context.Context, id int64, req *dto.UpdateMenuRequest) (*model.Menu, error) {
	menu, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != menu.Slug {
		newSlug, err := s.resolveSlug(ctx, *req.Slug, menu.Name, id)
		if err != nil {
			return nil, err
		}
		menu.Slug = newSlug
	} else if req.Name != nil && req.Slug == nil {
		// 改名未带 slug 时跟随新名称，被占用则保留原 slug
		if candidate := slug.Generate(*req.Name); candidate != "" && candidate != menu.Slug {
			taken, err := s.slugTakenByOther(ctx, candidate, id)
			if err != nil {
				return nil, err
			}
			if !taken {
				menu.Slug = candidate
			}
		}
	}

	if req.ClearParent {
		menu.ParentID = nil
	} else if req.ParentID != nil {
		newParent := *req.ParentID
		if menu.ParentID == nil || *menu.ParentID != newParent {
			if _, err := s.GetByID(ctx, newParent); err != nil {
				return nil, err
			}
			cycle, err := wouldCreateCycle(ctx, id, newParent, s.lookupParent)
			if err != nil {
				return nil, err
			}
			if cycle {
				return nil, apperr.Invalidf("moving menu %d under %d would create a cycle", id, newParent)
			}
			menu.ParentID = &newParent
		}
	}

	if req.SortOrder != nil {
		menu.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}
	if req.URL != nil {
		menu.URL = *req.URL
	}
	if req.Icon != nil {
		menu.Icon = *req.Icon
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.Type != nil {
		menu.Type = *req.Type
	}
	if req.IsNewTab != nil {
		menu.IsNewTab = *req.IsNewTab
	}

	if err := s.repo.Update(ctx, menu); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("menu slug %q already exists", menu.Slug)
		}
		return nil, err
	}
	return menu, nil
}

// Delete 删除菜单项，存在子项时拒绝
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.CountByParent(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return apperr.Invalidf("menu %d has %d child items", id, children)
	}

	return s.repo.Delete(ctx, id)
}

// Reorder 批量调整排序
func (s *MenuService) Reorder(ctx context.Context, items []dto.SortItem) error {
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

func (s *MenuService) lookupParent(ctx context.Context, id int64) (*int64, error) {
	menu, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return menu.ParentID, nil
}

// resolveSlug 与分类同规则：显式 slug 校验格式，缺省由名称生成，占用即冲突
func (s *MenuService) resolveSlug(ctx context.Context, explicit, name string, selfID int64) (string, error) {
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
		return "", apperr.Conflictf("menu slug %q already exists", candidate)
	}
	return candidate, nil
}

func (s *MenuService) slugTakenByOther(ctx context.Context, candidate string, selfID int64) (bool, error) {
	existing, err := s.repo.GetBySlug(ctx, candidate)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != selfID, nil
}
