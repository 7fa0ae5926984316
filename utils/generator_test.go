package utils

import (
	"strings"
	"testing"
)

func TestGenerateMeetURL(t *testing.T) {
	t.Setenv("MEET_BASE_URL", "https://meet.example.in/")

	url := GenerateMeetURL()
	if !strings.HasPrefix(url, "https://meet.example.in/") {
		t.Fatalf("expected the configured base, got %s", url)
	}
	if strings.Contains(url, ".in//") {
		t.Fatalf("trailing slash must not double up: %s", url)
	}
	code := strings.TrimPrefix(url, "https://meet.example.in/")
	if len(code) != 10 {
		t.Fatalf("expected a 10 character meeting code, got %q", code)
	}
}

func TestGeneratePennyAmountRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		amount := GeneratePennyAmount()
		if amount < 1 || amount > 99 {
			t.Fatalf("penny amount out of range: %d", amount)
		}
	}
}
