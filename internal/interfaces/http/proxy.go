package http

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ProxyHandler fetches QR code images from Safe2Pay on the storefront's
// behalf, so the page never embeds the gateway's domain directly. Only
// safe2pay.com hosts are fetched; anything else would make this an open
// proxy.
type ProxyHandler struct {
	httpClient *http.Client
	// outbound caps fetches toward the gateway's image host regardless of
	// how many clients ask.
	outbound *rate.Limiter
}

func NewProxyHandler() *ProxyHandler {
	return &ProxyHandler{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		outbound:   rate.NewLimiter(rate.Limit(10), 20),
	}
}

// HandleQRImage streams the QR image at ?url= back to the client.
// GET /api/proxy-image?url=...
func (h *ProxyHandler) HandleQRImage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "parâmetro url é obrigatório")
		return
	}

	target, err := url.Parse(raw)
	if err != nil || target.Scheme != "https" || !isSafe2PayHost(target.Hostname()) {
		writeError(w, http.StatusForbidden, "url não permitida")
		return
	}

	if !h.outbound.Allow() {
		writeError(w, http.StatusTooManyRequests, "muitas requisições, tente novamente em instantes")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		writeError(w, http.StatusForbidden, "url não permitida")
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		log.Printf("Error fetching QR image: %v", err)
		writeError(w, http.StatusInternalServerError, "falha ao buscar imagem")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusInternalServerError, "falha ao buscar imagem")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("Error streaming QR image: %v", err)
	}
}

func isSafe2PayHost(host string) bool {
	host = strings.ToLower(host)
	return host == "safe2pay.com.br" || strings.HasSuffix(host, ".safe2pay.com.br") ||
		host == "safe2pay.com" || strings.HasSuffix(host, ".safe2pay.com")
}
