package normalize

import "testing"

func TestNormalizeText_ArabicVariants(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"عربي", "عربی"},
		{"كتاب", "کتاب"},
		{"مكة", "مکه"},
		{"أصل إلى آخر", "اصل الی اخر"},
		{"مؤمن", "مومن"},
		{"شئ", "شی"},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeText_Whitespace(t *testing.T) {
	got := NormalizeText("  سلام\t\nدنیا   خوب  ")
	want := "سلام دنیا خوب"
	if got != want {
		t.Errorf("NormalizeText = %q, want %q", got, want)
	}
}

func TestNormalizeText_DropsForeignCharacters(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"سهام عدالت شما 123456 آزاد شد", "سهام عدالت شما ازاد شد"},
		{"برای دریافت وارد شوید: http://evil.example.com/x", "برای دریافت وارد شوید"},
		{"کد ۱۲۳۴ تایید", "کد تایید"},
		{"hello world", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeText_KashidaStripped(t *testing.T) {
	if got := NormalizeText("سـهام عدالت"); got != "سهام عدالت" {
		t.Errorf("NormalizeText = %q, want %q", got, "سهام عدالت")
	}
}

func TestNormalizeText_ZeroWidthMarks(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"سهام\u200cعدالت", "سهام عدالت"},
		{"سهام\u200b \u200dعدالت", "سهام عدالت"},
		{"\ufeffسهام عدالت", "سهام عدالت"},
	}
	for _, c := range cases {
		if got := NormalizeText(c.in); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeText_DropsShortTokens(t *testing.T) {
	if got := NormalizeText("سلام و خوبی"); got != "سلام خوبی" {
		t.Errorf("NormalizeText = %q, want %q", got, "سلام خوبی")
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"سـهام\u200cعدالت شما 123 آزاد شد! evil.example.com",
		"برنده جايزه شديد! وارد شويد",
		"  سلام\t\nدنیا   خوب  ",
		"",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		if twice := NormalizeText(once); twice != once {
			t.Errorf("NormalizeText not stable for %q: %q then %q", in, once, twice)
		}
	}
}

func TestMessageHash_IgnoresObfuscation(t *testing.T) {
	base := MessageHash("سهام عدالت شما آزاد شد وارد شوید")
	obfuscated := []string{
		"سـهام عدالت شما آزاد شد وارد شوید",
		"سهام\u200cعدالت شما آزاد شد، وارد شوید 4412",
		"سهام عدالت شما 987 آزاد شد! وارد شوید evil.example.com/x",
	}
	if base == "" {
		t.Fatal("hash of non-empty message is empty")
	}
	for _, v := range obfuscated {
		if h := MessageHash(v); h != base {
			t.Errorf("MessageHash(%q) = %s, want %s", v, h, base)
		}
	}
}

func TestMessageHash_StableAcrossVariants(t *testing.T) {
	base := MessageHash("برنده جايزه شديد! وارد شويد")
	variants := []string{
		"برنده  جایزه   شدید! وارد شوید",
		"  برنده جایزه شدید!\nوارد شوید  ",
		"برنده جایزه شدید! وارد شوید",
	}
	if base == "" {
		t.Fatal("hash of non-empty message is empty")
	}
	if len(base) != 64 {
		t.Fatalf("hash length = %d, want 64", len(base))
	}
	for _, v := range variants {
		if h := MessageHash(v); h != base {
			t.Errorf("MessageHash(%q) = %s, want %s", v, h, base)
		}
	}
}

func TestMessageHash_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if h := MessageHash(in); h != "" {
			t.Errorf("MessageHash(%q) = %q, want empty", in, h)
		}
	}
}

func TestContainsLink(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"برای دریافت جایزه به example.com/win بروید", true},
		{"click https://evil-bank.ir/login now", true},
		{"www.example.com", true},
		{"هیچ لینکی اینجا نیست", false},
		{"version 2.0 released", false},
	}
	for _, c := range cases {
		if got := ContainsLink(c.in); got != c.want {
			t.Errorf("ContainsLink(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestExtractLinks(t *testing.T) {
	links := ExtractLinks("visit https://a.example.com/x and b.example.ir/y?t=1")
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %v", len(links), links)
	}
	if links[0] != "https://a.example.com/x" {
		t.Errorf("first link = %q", links[0])
	}
	if ExtractLinks("no links") != nil {
		t.Error("expected nil for link-free text")
	}
}
