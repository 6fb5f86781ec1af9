package slug

import "testing"

// ==================== 单元测试 ====================

func TestGenerate_Cyrillic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Детская одежда", "detskaya-odezhda"},
		{"Щетки и губки", "schetki-i-gubki"},
		{"Мъяч", "myach"},
		{"Товар №1 (новый)", "tovar-1-novyy"},
	}

	for _, c := range cases {
		if got := Generate(c.in); got != c.want {
			t.Errorf("Generate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGenerate_Latin(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Multiple   Spaces  ", "multiple-spaces"},
		{"under_score_name", "under-score-name"},
		{"--leading-and-trailing--", "leading-and-trailing"},
		{"MixedCASE 42", "mixedcase-42"},
		{"", ""},
		{"!!!", ""},
	}

	for _, c := range cases {
		if got := Generate(c.in); got != c.want {
			t.Errorf("Generate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGenerateUnique(t *testing.T) {
	existing := []string{"phone", "phone-1", "phone-2"}

	if got := GenerateUnique("Phone", existing); got != "phone-3" {
		t.Errorf("GenerateUnique = %q, want phone-3", got)
	}
	if got := GenerateUnique("Tablet", existing); got != "tablet" {
		t.Errorf("GenerateUnique = %q, want tablet", got)
	}
}

func TestIsValid(t *testing.T) {
	valid := []string{"a", "abc-def", "a1-b2-c3", "42"}
	invalid := []string{"", "-abc", "abc-", "ab--cd", "ABC", "при-вет", "a b"}

	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("IsValid(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("IsValid(%q) = true, want false", s)
		}
	}

	// 长度上限 100
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if IsValid(string(long)) {
		t.Error("IsValid(101 chars) = true, want false")
	}
}
