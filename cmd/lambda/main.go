// Serverless entrypoint: the same application served behind API Gateway.
// Each invocation is translated to an http.Request against the shared
// router, so handlers and middleware behave identically to the long-running
// server. State that must survive across instances (webhook status, rate
// limit counters) requires REDIS_ENABLED here; in-memory stores reset on
// every cold start.
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"checkout/internal/app"
	"checkout/internal/shared/config"
)

var handler http.Handler

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Application error: %v", err)
	}

	deps, err := app.NewDependencies(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Application error: %v", err)
	}
	handler = app.SetupRoutes(deps, cfg)

	lambda.Start(handleRequest)
}

func handleRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	req, err := toHTTPRequest(ctx, event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusBadRequest}, nil
	}

	rec := newResponseBuffer()
	handler.ServeHTTP(rec, req)

	return toGatewayResponse(rec), nil
}

// responseBuffer captures a handler's response so it can be returned as a
// single gateway payload.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), status: http.StatusOK}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(status int) { b.status = status }

func (b *responseBuffer) Write(p []byte) (int, error) { return b.body.Write(p) }

func toHTTPRequest(ctx context.Context, event events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		body = string(decoded)
	}

	path := event.RawPath
	if path == "" {
		path = "/"
	}
	target := url.URL{Path: path, RawQuery: event.RawQueryString}

	req, err := http.NewRequestWithContext(ctx, event.RequestContext.HTTP.Method, target.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	for name, value := range event.Headers {
		req.Header.Set(name, value)
	}
	if sourceIP := event.RequestContext.HTTP.SourceIP; sourceIP != "" {
		req.RemoteAddr = sourceIP + ":0"
	}

	return req, nil
}

func toGatewayResponse(rec *responseBuffer) events.APIGatewayV2HTTPResponse {
	headers := make(map[string]string, len(rec.header))
	for name, values := range rec.header {
		headers[name] = strings.Join(values, ",")
	}

	raw := rec.body.Bytes()
	body := string(raw)
	isBase64 := !utf8.Valid(raw)
	if isBase64 {
		body = base64.StdEncoding.EncodeToString(raw)
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode:      rec.status,
		Headers:         headers,
		Body:            body,
		IsBase64Encoded: isBase64,
	}
}
