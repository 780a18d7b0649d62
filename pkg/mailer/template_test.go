package mailer

import (
	"strings"
	"testing"
	"time"
)

func TestRenderVerification(t *testing.T) {
	text, html, err := RenderVerification("Cajero", "123456", 10*time.Minute)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(text, "123456") || !strings.Contains(text, "10 minutos") {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(html, "123456") || !strings.Contains(html, "Cajero") {
		t.Fatalf("html missing code or app name")
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Fatal("html body is not a document")
	}
}

func TestRenderVerificationEscapesCode(t *testing.T) {
	_, html, err := RenderVerification("Cajero", `<script>`, time.Minute)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("code not escaped in html body")
	}
}

func TestFormatTTL(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want string
	}{
		{ttl: 30 * time.Second, want: "1 minuto"},
		{ttl: time.Minute, want: "1 minuto"},
		{ttl: 10 * time.Minute, want: "10 minutos"},
	}
	for _, tt := range tests {
		if got := formatTTL(tt.ttl); got != tt.want {
			t.Fatalf("formatTTL(%v) = %q, want %q", tt.ttl, got, tt.want)
		}
	}
}
