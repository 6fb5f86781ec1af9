package service

import (
	"context"
	"time"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// CartService 购物车服务
// 购物车行只存商品引用，展示与下单时再按当前商品取价
type CartService struct {
	repo            repository.CartRepository
	productRepo     repository.ProductRepository
	defaultCurrency string
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, defaultCurrency string) *CartService {
	return &CartService{repo: repo, productRepo: productRepo, defaultCurrency: defaultCurrency}
}

// ==================== 查询 ====================

// Get 取购物车视图，不存在时返回空视图而不报错
func (s *CartService) Get(ctx context.Context, key dto.CartKey) (*dto.CartView, error) {
	if err := validateCartKey(key); err != nil {
		return nil, err
	}

	cart, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if cart == nil || cart.IsExpired(time.Now()) {
		return s.emptyView(key), nil
	}
	return s.buildView(ctx, cart)
}

// ==================== 写入 ====================

// AddItem 加入购物车，同商品同变体合并数量
func (s *CartService) AddItem(ctx context.Context, req *dto.AddCartItemRequest) (*dto.CartView, error) {
	if err := validateCartKey(req.CartKey); err != nil {
		return nil, err
	}
	if req.Quantity <= 0 {
		return nil, apperr.Invalidf("quantity must be positive, got %d", req.Quantity)
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, apperr.NotFoundf("product", req.ProductID)
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.Invalidf("product %d is not available", req.ProductID)
	}

	cart, err := s.getOrCreate(ctx, req.CartKey)
	if err != nil {
		return nil, err
	}

	// 合并已有行
	var existing *model.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID && cart.Items[i].Variant == req.Variant {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		existing.Quantity += req.Quantity
		if err := s.repo.UpdateItem(ctx, existing); err != nil {
			return nil, err
		}
	} else {
		item := &model.CartItem{
			CartID:     cart.ID,
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			Variant:    req.Variant,
			Attributes: req.Attributes,
		}
		if err := s.repo.AddItem(ctx, item); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, *item)
	}

	return s.buildView(ctx, cart)
}

// UpdateItem 修改购物车行数量，数量 <= 0 等同删除
func (s *CartService) UpdateItem(ctx context.Context, productID int64, req *dto.UpdateCartItemRequest) (*dto.CartView, error) {
	if err := validateCartKey(req.CartKey); err != nil {
		return nil, err
	}

	cart, err := s.find(ctx, req.CartKey)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, apperr.NotFoundf("cart")
	}

	var item *model.CartItem
	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && cart.Items[i].Variant == req.Variant {
			item = &cart.Items[i]
			idx = i
			break
		}
	}
	if item == nil {
		return nil, apperr.NotFoundf("cart item", productID)
	}

	if req.Quantity <= 0 {
		if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		item.Quantity = req.Quantity
		if err := s.repo.UpdateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return s.buildView(ctx, cart)
}

// RemoveItem 删除购物车行
func (s *CartService) RemoveItem(ctx context.Context, productID int64, key dto.CartKey, variant string) (*dto.CartView, error) {
	return s.UpdateItem(ctx, productID, &dto.UpdateCartItemRequest{CartKey: key, Quantity: 0, Variant: variant})
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, key dto.CartKey) error {
	if err := validateCartKey(key); err != nil {
		return err
	}
	cart, err := s.find(ctx, key)
	if err != nil || cart == nil {
		return err
	}
	return s.repo.ClearItems(ctx, cart.ID)
}

// SetPromoCode 设置优惠码（折扣金额由下单时人工确认，这里只记录）
func (s *CartService) SetPromoCode(ctx context.Context, key dto.CartKey, code string) error {
	if err := validateCartKey(key); err != nil {
		return err
	}
	cart, err := s.getOrCreate(ctx, key)
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, cart.ID, map[string]interface{}{"promo_code": code})
}

// DeleteBySessionID 按会话删除购物车，下单成功后调用
func (s *CartService) DeleteBySessionID(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repo.DeleteBySessionID(ctx, sessionID)
}

// PurgeExpired 清理过期购物车，定时任务调用
func (s *CartService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now())
}

// ==================== 内部辅助 ====================

// validateCartKey 归属键必须恰好提供其一
func validateCartKey(key dto.CartKey) error {
	hasSession := key.SessionID != ""
	hasUser := key.UserID > 0
	if hasSession == hasUser {
		return apperr.Invalidf("exactly one of session_id or user_id is required")
	}
	return nil
}

// find 按键查找，不存在返回 (nil, nil)
func (s *CartService) find(ctx context.Context, key dto.CartKey) (*model.Cart, error) {
	var cart *model.Cart
	var err error
	if key.SessionID != "" {
		cart, err = s.repo.GetBySessionID(ctx, key.SessionID)
	} else {
		cart, err = s.repo.GetByUserID(ctx, key.UserID)
	}
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return cart, nil
}

// getOrCreate 取购物车，过期的先删再建
func (s *CartService) getOrCreate(ctx context.Context, key dto.CartKey) (*model.Cart, error) {
	cart, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	if cart != nil && cart.IsExpired(time.Now()) {
		if err := s.repo.Delete(ctx, cart.ID); err != nil {
			return nil, err
		}
		cart = nil
	}
	if cart != nil {
		return cart, nil
	}

	cart = &model.Cart{ExpiresAt: time.Now().Add(model.CartTTL)}
	if key.SessionID != "" {
		sid := key.SessionID
		cart.SessionID = &sid
	} else {
		uid := key.UserID
		cart.UserID = &uid
	}

	if err := s.repo.Create(ctx, cart); err != nil {
		// 并发创建撞唯一索引时读回已有的
		if repository.IsDuplicateKey(err) {
			existing, ferr := s.find(ctx, key)
			if ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return cart, nil
}

func (s *CartService) emptyView(key dto.CartKey) *dto.CartView {
	view := &dto.CartView{Items: []dto.CartItemView{}, Currency: s.defaultCurrency}
	if key.SessionID != "" {
		sid := key.SessionID
		view.SessionID = &sid
	} else if key.UserID > 0 {
		uid := key.UserID
		view.UserID = &uid
	}
	return view
}

// buildView 组装购物车视图，商品已删除或下架的行静默剔除
func (s *CartService) buildView(ctx context.Context, cart *model.Cart) (*dto.CartView, error) {
	view := &dto.CartView{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		UserID:    cart.UserID,
		Items:     []dto.CartItemView{},
		PromoCode: cart.PromoCode,
		Currency:  s.defaultCurrency,
	}
	if len(cart.Items) == 0 {
		return view, nil
	}

	ids := make([]int64, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, item := range cart.Items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			continue
		}

		price := product.PriceCurrent
		if item.Variant != "" {
			if vp, ok := variantPrice(product, item.Variant); ok {
				price = vp
			}
		}

		lineTotal := Round2(price * float64(item.Quantity))
		view.Items = append(view.Items, dto.CartItemView{
			CartItem:     item,
			ProductName:  product.Name,
			ProductSlug:  product.Slug,
			ProductImage: product.MainImageURL(),
			Price:        price,
			Currency:     product.Currency,
			LineTotal:    lineTotal,
		})
		view.Subtotal = Round2(view.Subtotal + lineTotal)

		if product.Currency != "" {
			view.Currency = product.Currency
		}
	}

	return view, nil
}
