package privacy

import "testing"

func TestScrub(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no tags", "User likes tea", "User likes tea"},
		{"single block", "User likes tea <private>and owes money</private>", "User likes tea"},
		{"multiple blocks", "<private>a</private>keep<private>b</private>", "keep"},
		{"multiline block", "keep <private>line one\nline two</private>", "keep"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Scrub(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFullyPrivate(t *testing.T) {
	if !FullyPrivate("<private>everything here</private>") {
		t.Error("all-private content should be fully private")
	}
	if !FullyPrivate("  <private>a</private>  <private>b</private> ") {
		t.Error("whitespace and private blocks should be fully private")
	}
	if FullyPrivate("User likes tea <private>secret</private>") {
		t.Error("mixed content is not fully private")
	}
	if FullyPrivate("User likes tea") {
		t.Error("plain content is not fully private")
	}
}
