package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// ==================== 转写表 ====================

// 西里尔字母 → 拉丁字母转写表
// 商品/分类名称多为俄语，slug 必须是纯 ASCII
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "h", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "sch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu", 'я': "ya",
}

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9_\s-]`)
	separators   = regexp.MustCompile(`[\s_-]+`)
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// ==================== 生成 ====================

// Generate 根据任意文本生成 URL slug
// 纯函数：小写 → 西里尔转写 → 去除非法字符 → 折叠分隔符 → 去掉首尾连字符
func Generate(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(text))

	// 转写西里尔字母
	var b strings.Builder
	for _, r := range s {
		if mapped, ok := translitTable[r]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	s = b.String()

	// 去除特殊字符，空格/下划线/连字符折叠为单个连字符
	s = invalidChars.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return s
}

// GenerateUnique 生成不在 existing 中的 slug，冲突时追加 -1, -2, ...
// 检查与写入之间存在竞态，唯一性最终由数据库唯一索引保证，这里只是首选值
func GenerateUnique(text string, existing []string) string {
	s := Generate(text)
	base := s

	taken := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		taken[e] = struct{}{}
	}

	for counter := 1; ; counter++ {
		if _, ok := taken[s]; !ok {
			return s
		}
		s = fmt.Sprintf("%s-%d", base, counter)
	}
}

// IsValid 校验 slug 格式：小写字母数字段，单连字符分隔，长度 1-100
func IsValid(s string) bool {
	if s == "" || len(s) > 100 {
		return false
	}
	return slugPattern.MatchString(s)
}
