package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllow_UnderLimit(t *testing.T) {
	l := New(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
}

func TestAllow_OverLimit(t *testing.T) {
	l := New(2, time.Minute)
	l.Allow("10.0.0.1")
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Error("third request should be blocked")
	}
	// A different key has its own window.
	if !l.Allow("10.0.0.2") {
		t.Error("other key should be allowed")
	}
}

func TestReset(t *testing.T) {
	l := New(1, time.Minute)
	l.Allow("10.0.0.1")
	if l.Allow("10.0.0.1") {
		t.Fatal("second request should be blocked before reset")
	}
	l.Reset("10.0.0.1")
	if !l.Allow("10.0.0.1") {
		t.Error("request after reset should be allowed")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr with port", "192.0.2.1:5000", "", "", "192.0.2.1"},
		{"x-forwarded-for single", "192.0.2.1:5000", "203.0.113.9", "", "203.0.113.9"},
		{"x-forwarded-for list", "192.0.2.1:5000", "203.0.113.9, 10.0.0.1", "", "203.0.113.9"},
		{"x-real-ip", "192.0.2.1:5000", "", "203.0.113.7", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
