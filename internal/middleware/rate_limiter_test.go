package middleware

import (
	"testing"
	"time"
)

// ==================== 单元测试 ====================

func TestCooldownLimiter_Check(t *testing.T) {
	limiter := &CooldownLimiter{}

	// 首次放行
	result := limiter.Check("order:1.2.3.4", time.Minute)
	if !result.Allowed {
		t.Fatal("首次请求应放行")
	}

	// 冷却期内拒绝
	result = limiter.Check("order:1.2.3.4", time.Minute)
	if result.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if result.RetryAfter <= 0 || result.RetryAfter > time.Minute {
		t.Errorf("retry_after = %v", result.RetryAfter)
	}

	// 不同 key 互不影响
	if got := limiter.Check("order:5.6.7.8", time.Minute); !got.Allowed {
		t.Error("不同 key 应独立计时")
	}
}

func TestCooldownLimiter_Expiry(t *testing.T) {
	limiter := &CooldownLimiter{}

	limiter.Check("k", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if got := limiter.Check("k", 10*time.Millisecond); !got.Allowed {
		t.Error("冷却期过后应放行")
	}
}

func TestCooldownLimiter_Reset(t *testing.T) {
	limiter := &CooldownLimiter{}

	limiter.Check("k", time.Minute)
	limiter.Reset("k")

	if got := limiter.Check("k", time.Minute); !got.Allowed {
		t.Error("Reset 后应放行")
	}
}
