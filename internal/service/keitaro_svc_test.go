package service

import (
	"strings"
	"testing"

	"shop_admin_v1_202608/internal/apperr"
	"shop_admin_v1_202608/internal/model"
)

// ==================== 单元测试 ====================

func TestKeitaroService_BuildTrackingLink(t *testing.T) {
	svc := &KeitaroService{}

	integration := &model.Integration{
		TrackingURL: "https://track.example.com/click",
		GroupCode:   "grp42",
	}

	link, err := svc.BuildTrackingLink(integration, map[string]string{
		"source":       "facebook",
		"utm_campaign": "summer",
		"medium":       "",
	})
	if err != nil {
		t.Fatalf("BuildTrackingLink: %v", err)
	}

	if !strings.HasPrefix(link, "https://track.example.com/click/grp42?") {
		t.Errorf("link = %q, 路径应包含 group code", link)
	}
	// 无前缀的键自动补 utm_
	if !strings.Contains(link, "utm_source=facebook") {
		t.Errorf("link = %q, 缺少 utm_source", link)
	}
	if !strings.Contains(link, "utm_campaign=summer") {
		t.Errorf("link = %q, 缺少 utm_campaign", link)
	}
	// 空值参数丢弃
	if strings.Contains(link, "utm_medium") {
		t.Errorf("link = %q, 空值参数不应出现", link)
	}
}

func TestKeitaroService_BuildTrackingLink_NoGroupCode(t *testing.T) {
	svc := &KeitaroService{}

	link, err := svc.BuildTrackingLink(&model.Integration{
		TrackingURL: "https://track.example.com/",
	}, nil)
	if err != nil {
		t.Fatalf("BuildTrackingLink: %v", err)
	}
	if link != "https://track.example.com/" {
		t.Errorf("link = %q", link)
	}
}

func TestKeitaroService_BuildTrackingLink_MissingURL(t *testing.T) {
	svc := &KeitaroService{}

	_, err := svc.BuildTrackingLink(&model.Integration{}, nil)
	if !apperr.IsInvalid(err) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}
