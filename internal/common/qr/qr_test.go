package qr

import (
	"strings"
	"testing"
)

func TestDataURL(t *testing.T) {
	url, err := DataURL("some-checkin-token")
	if err != nil {
		t.Fatalf("DataURL: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", url)
	}
}

func TestDataURLEmpty(t *testing.T) {
	if _, err := DataURL(""); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
