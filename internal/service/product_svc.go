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

// ProductService 商品服务
type ProductService struct {
	repo            repository.ProductRepository
	categoryRepo    repository.CategoryRepository
	storage         Storage // 可为 nil
	defaultCurrency string
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository, storage Storage, defaultCurrency string) *ProductService {
	return &ProductService{
		repo:            repo,
		categoryRepo:    categoryRepo,
		storage:         storage,
		defaultCurrency: defaultCurrency,
	}
}

// ==================== 查询 ====================

// GetByID 按 ID 查询
func (s *ProductService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("product", id)
		}
		return nil, err
	}
	return product, nil
}

// GetBySlug 按 slug 查询并累加浏览数
func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*model.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("product", productSlug)
		}
		return nil, err
	}

	if err := s.repo.IncrementViews(ctx, product.ID); err != nil {
		log.Printf("[ProductService] 商品 %d 浏览数累加失败: %v", product.ID, err)
	}
	return product, nil
}

// List 商品列表
func (s *ProductService) List(ctx context.Context, query *dto.ProductListQuery) ([]model.Product, int64, error) {
	return s.repo.List(ctx, repository.ProductFilter{
		CategoryID:      query.CategoryID,
		Keyword:         query.Keyword,
		IncludeInactive: query.IncludeInactive,
		Page:            query.Page,
		PageSize:        query.PageSize,
	})
}

// ==================== 写入 ====================

// Create 创建商品
// slug 未显式给定时由名称生成，冲突时自动追加 -1, -2 ...
func (s *ProductService) Create(ctx context.Context, req *dto.CreateProductRequest) (*model.Product, error) {
	productSlug, err := s.resolveSlug(ctx, req.Slug, req.Name, 0)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}
	for _, id := range req.ExtraCategoryIDs {
		if err := s.requireCategory(ctx, id); err != nil {
			return nil, err
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	product := &model.Product{
		Name:             req.Name,
		Slug:             productSlug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,

		CategoryID:       req.CategoryID,
		ExtraCategoryIDs: req.ExtraCategoryIDs,

		PriceCurrent: req.PriceCurrent,
		PriceOld:     req.PriceOld,
		Currency:     currency,

		Stock: req.Stock,
		SKU:   req.SKU,

		Variants:   req.Variants,
		Attributes: req.Attributes,
		Images:     req.Images,

		IsActive:  true,
		SortOrder: req.SortOrder,

		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("product slug %q already exists", productSlug)
		}
		return nil, err
	}
	return product, nil
}

// Update 更新商品，nil 字段不修改
func (s *ProductService) Update(ctx context.Context, id int64, req *dto.UpdateProductRequest) (*model.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Slug != nil && *req.Slug != product.Slug {
		newSlug, err := s.resolveSlug(ctx, *req.Slug, product.Name, id)
		if err != nil {
			return nil, err
		}
		product.Slug = newSlug
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ShortDescription != nil {
		product.ShortDescription = *req.ShortDescription
	}

	if req.ClearCategory {
		product.CategoryID = nil
	} else if req.CategoryID != nil {
		if err := s.requireCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
	}
	if req.ExtraCategoryIDs != nil {
		for _, cid := range *req.ExtraCategoryIDs {
			if err := s.requireCategory(ctx, cid); err != nil {
				return nil, err
			}
		}
		product.ExtraCategoryIDs = *req.ExtraCategoryIDs
	}

	if req.PriceCurrent != nil {
		product.PriceCurrent = *req.PriceCurrent
	}
	if req.PriceOld != nil {
		product.PriceOld = *req.PriceOld
	}
	if req.Currency != nil {
		product.Currency = *req.Currency
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Variants != nil {
		product.Variants = *req.Variants
	}
	if req.Attributes != nil {
		product.Attributes = *req.Attributes
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		product.SortOrder = *req.SortOrder
	}
	if req.MetaTitle != nil {
		product.MetaTitle = *req.MetaTitle
	}
	if req.MetaDescription != nil {
		product.MetaDescription = *req.MetaDescription
	}

	if err := s.repo.Update(ctx, product); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, apperr.Conflictf("product slug %q already exists", product.Slug)
		}
		return nil, err
	}
	return product, nil
}

// Delete 删除商品并清理图片
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil {
		prefix := fmt.Sprintf("products/%d/", id)
		if err := s.storage.DeletePrefix(ctx, prefix); err != nil {
			log.Printf("[ProductService] 清理商品 %d 图片失败: %v", id, err)
		}
	}
	return nil
}

// ==================== 内部辅助 ====================

func (s *ProductService) requireCategory(ctx context.Context, id int64) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		if repository.IsRecordNotFound(err) {
			return apperr.NotFoundf("category", id)
		}
		return err
	}
	return nil
}

func (s *ProductService) resolveSlug(ctx context.Context, explicit, name string, selfID int64) (string, error) {
	if explicit != "" {
		if !slug.IsValid(explicit) {
			return "", apperr.Invalidf("invalid slug %q", explicit)
		}
		taken, err := s.slugTakenByOther(ctx, explicit, selfID)
		if err != nil {
			return "", err
		}
		if taken {
			return "", apperr.Conflictf("product slug %q already exists", explicit)
		}
		return explicit, nil
	}

	base := slug.Generate(name)
	if base == "" {
		return "", apperr.Invalidf("cannot derive slug from name %q", name)
	}

	candidate := base
	for counter := 1; counter <= 100; counter++ {
		taken, err := s.slugTakenByOther(ctx, candidate, selfID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
	}
	return "", apperr.Conflictf("cannot find free slug for %q", base)
}

func (s *ProductService) slugTakenByOther(ctx context.Context, candidate string, selfID int64) (bool, error) {
	existing, err := s.repo.GetBySlug(ctx, candidate)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return existing.ID != selfID, nil
}
