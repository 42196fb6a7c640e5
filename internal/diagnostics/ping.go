package diagnostics

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thelocal/backend/internal/settings"
	"github.com/thelocal/backend/pkg/response"
)

// PingRequest is the payload for testing an arbitrary HTTP endpoint.
type PingRequest struct {
	URL     string `json:"url"`
	Method  string `json:"method"`
	Timeout int    `json:"timeout"`
}

// PingResult captures the outcome of a successful ping.
type PingResult struct {
	Status      string            `json:"status"`
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	StatusCode  int               `json:"status_code"`
	LatencyMS   int64             `json:"latency_ms"`
	BodyPreview string            `json:"body_preview"`
	Headers     map[string]string `json:"headers"`
}

const bodyPreviewLimit = 400

// Ping issues a bounded GET or HEAD request against the given URL.
// Validation failures yield a 400-style error, transport failures a
// 502-style one.
func Ping(req PingRequest) (*PingResult, error) {
	target := settings.NormalizeURL(req.URL, "https")
	if target == "" {
		return nil, response.BadRequest("URL is required")
	}
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, response.BadRequest("Only HTTP and HTTPS URLs are allowed")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet && method != http.MethodHead {
		return nil, response.BadRequest("Only GET or HEAD methods are supported")
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = 10
	}
	if timeout < 1 {
		timeout = 1
	} else if timeout > 30 {
		timeout = 30
	}

	httpReq, err := http.NewRequest(method, target, nil)
	if err != nil {
		return nil, response.BadRequest(err.Error())
	}

	client := &http.Client{Timeout: time.Duration(timeout) * time.Second}
	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, response.Upstream(http.StatusBadGateway, err.Error())
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	preview := string(body)
	if len(preview) > bodyPreviewLimit {
		preview = preview[:bodyPreviewLimit]
	}

	headers := make(map[string]string, len(resp.Header))
	for name := range resp.Header {
		headers[name] = resp.Header.Get(name)
	}

	return &PingResult{
		Status:      "ok",
		URL:         target,
		Method:      method,
		StatusCode:  resp.StatusCode,
		LatencyMS:   latency,
		BodyPreview: preview,
		Headers:     headers,
	}, nil
}
