package repository

import "testing"

func TestSplitFeedEntry(t *testing.T) {
	cases := []struct {
		in, want string
		remove   bool
	}{
		{"evil-bank.ir", "evil-bank.ir", false},
		{"-evil-bank.ir", "evil-bank.ir", true},
		{"-5000123", "5000123", true},
		{"-", "", true},
		{"", "", false},
		{"has-dash-inside", "has-dash-inside", false},
	}
	for _, c := range cases {
		got, remove := splitFeedEntry(c.in)
		if got != c.want || remove != c.remove {
			t.Errorf("splitFeedEntry(%q) = (%q, %v), want (%q, %v)",
				c.in, got, remove, c.want, c.remove)
		}
	}
}
