package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestProxyRejectsForeignHosts(t *testing.T) {
	handler := NewProxyHandler()

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing url", "", http.StatusBadRequest},
		{"plain http", "http://images.safe2pay.com.br/qr/1.png", http.StatusForbidden},
		{"foreign host", "https://evil.example.com/qr.png", http.StatusForbidden},
		{"lookalike suffix", "https://notsafe2pay.com.br/qr.png", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/proxy-image"
			if tt.target != "" {
				path += "?url=" + url.QueryEscape(tt.target)
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rr := httptest.NewRecorder()
			handler.HandleQRImage(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestIsSafe2PayHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"safe2pay.com.br", true},
		{"images.safe2pay.com.br", true},
		{"payment.safe2pay.com", true},
		{"SAFE2PAY.COM.BR", true},
		{"notsafe2pay.com.br", false},
		{"safe2pay.com.br.evil.com", false},
		{"example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := isSafe2PayHost(tt.host); got != tt.want {
				t.Errorf("isSafe2PayHost(%q) = %v, want %v", tt.host, got, tt.want)
			}
		})
	}
}
