package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"shop_admin_v1_202608/internal/api/dto"
	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// PricedLine 定价完成的订单行，价格取自当前商品/变体
type PricedLine struct {
	Product   *model.Product
	Input     dto.OrderItemInput
	UnitPrice float64
	LineTotal float64
}

// PricingResult 整单定价结果
type PricingResult struct {
	Lines    []PricedLine
	Subtotal float64
	Currency string
}

// PricingEngine 订单定价引擎
// 单价始终以服务端商品数据为准，客户端传入的价格一律忽略
type PricingEngine struct {
	productRepo     repository.ProductRepository
	defaultCurrency string
}

// NewPricingEngine 创建定价引擎
func NewPricingEngine(productRepo repository.ProductRepository, defaultCurrency string) *PricingEngine {
	return &PricingEngine{productRepo: productRepo, defaultCurrency: defaultCurrency}
}

// PriceItems 对一组商品行定价
// 全有或全无：任一商品不存在或已下架，整单失败并在错误里列出全部问题 ID
func (e *PricingEngine) PriceItems(ctx context.Context, items []dto.OrderItemInput) (*PricingResult, error) {
	if len(items) == 0 {
		return nil, apperr.Invalidf("order items are empty")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, apperr.Invalidf("product %d has non-positive quantity %d", item.ProductID, item.Quantity)
		}
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; !ok {
			seen[item.ProductID] = struct{}{}
			ids = append(ids, item.ProductID)
		}
	}

	products, err := e.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var unavailable []string
	for _, id := range ids {
		product, ok := byID[id]
		if !ok {
			unavailable = append(unavailable, fmt.Sprintf("%d (not found)", id))
		} else if !product.IsActive {
			unavailable = append(unavailable, fmt.Sprintf("%d (inactive)", id))
		}
	}
	if len(unavailable) > 0 {
		return nil, apperr.Invalidf("products unavailable: %s", strings.Join(unavailable, ", "))
	}

	result := &PricingResult{Currency: e.defaultCurrency}
	for _, item := range items {
		product := byID[item.ProductID]

		unitPrice := product.PriceCurrent
		if item.Variant != "" {
			if vp, ok := variantPrice(product, item.Variant); ok {
				unitPrice = vp
			}
		}

		lineTotal := Round2(unitPrice * float64(item.Quantity))
		result.Lines = append(result.Lines, PricedLine{
			Product:   product,
			Input:     item,
			UnitPrice: unitPrice,
			LineTotal: lineTotal,
		})
		result.Subtotal = Round2(result.Subtotal + lineTotal)

		if result.Currency == e.defaultCurrency && product.Currency != "" {
			result.Currency = product.Currency
		}
	}

	return result, nil
}

// variantPrice 取变体自有价格，变体未定价时回退商品价
func variantPrice(product *model.Product, variant string) (float64, bool) {
	for _, v := range product.Variants {
		if v.Name == variant {
			if v.Price.Current > 0 {
				return v.Price.Current, true
			}
			return 0, false
		}
	}
	return 0, false
}

// Round2 金额保留两位小数
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
