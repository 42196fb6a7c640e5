package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// TailscaleStatus is the result of the latest reachability probe against
// the configured overlay-network peer.
type TailscaleStatus struct {
	Reachable   bool    `json:"reachable"`
	LatencyMS   *int64  `json:"latency_ms"`
	LastChecked *string `json:"last_checked"`
	Detail      string  `json:"detail"`
	TestedURL   string  `json:"tested_url,omitempty"`
}

// BuildHealthURL turns a raw address into a probe URL. Values that
// already carry a scheme pass through; otherwise the port defaults to
// 8088 and the path to /health.
func BuildHealthURL(value string) string {
	target := strings.TrimSpace(value)
	if target == "" {
		return ""
	}
	if strings.Contains(target, "://") {
		return target
	}

	hostPort := target
	path := "/health"
	if idx := strings.Index(target, "/"); idx != -1 {
		hostPort = target[:idx]
		if trimmed := strings.TrimLeft(target[idx+1:], "/"); trimmed != "" {
			path = "/" + trimmed
		}
	}

	host := hostPort
	port := "8088"
	if idx := strings.Index(hostPort, ":"); idx != -1 {
		host = hostPort[:idx]
		if p := strings.TrimSpace(hostPort[idx+1:]); p != "" {
			port = p
		}
	}
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	return fmt.Sprintf("http://%s:%s%s", host, port, path)
}

// TailscaleProber issues short-timeout health checks and caches the most
// recent result.
type TailscaleProber struct {
	client *http.Client

	mu     sync.Mutex
	status TailscaleStatus
}

func NewTailscaleProber() *TailscaleProber {
	return &TailscaleProber{
		client: &http.Client{Timeout: 5 * time.Second},
		status: TailscaleStatus{Detail: "Not verified yet"},
	}
}

// Check probes the given address without touching the cache.
func (p *TailscaleProber) Check(address string) TailscaleStatus {
	now := time.Now().UTC().Format(time.RFC3339)
	status := TailscaleStatus{LastChecked: &now}

	if strings.TrimSpace(address) == "" {
		status.Detail = "No Tailscale address configured"
		return status
	}

	url := BuildHealthURL(address)
	if url == "" {
		status.Detail = "Invalid Tailscale address"
		return status
	}
	status.TestedURL = url

	start := time.Now()
	resp, err := p.client.Get(url)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	defer resp.Body.Close()

	latency := time.Since(start).Milliseconds()
	status.LatencyMS = &latency
	checked := time.Now().UTC().Format(time.RFC3339)
	status.LastChecked = &checked

	if resp.StatusCode != http.StatusOK {
		status.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return status
	}

	status.Reachable = true
	status.Detail = "reachable"
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var payload map[string]interface{}
		if json.Unmarshal(body, &payload) == nil {
			if detail, ok := payload["status"].(string); ok && detail != "" {
				status.Detail = detail
			}
		}
	}
	return status
}

// Update probes address and stores the result as the current status.
func (p *TailscaleProber) Update(address string) TailscaleStatus {
	status := p.Check(address)
	p.mu.Lock()
	p.status = status
	p.mu.Unlock()
	return status
}

// Current returns the cached status.
func (p *TailscaleProber) Current() TailscaleStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}
