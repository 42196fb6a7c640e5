package main

import (
	"embed"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/audit"
	"github.com/thelocal/backend/internal/config"
	"github.com/thelocal/backend/pkg/logger"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)
	audit.Init(cfg.Log.AuditFile)

	gin.SetMode(cfg.Server.Mode)

	svc := bootstrap(cfg)

	r := gin.New()
	registerRoutes(r, svc)
	registerStatic(r)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// registerStatic serves the embedded web front end: index.html at the
// root, assets by path, and index.html again as the SPA fallback.
func registerStatic(r *gin.Engine) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logger.Warnf("Embedded static assets unavailable: %v", err)
		return
	}

	serveIndex := func(c *gin.Context) {
		data, readErr := fs.ReadFile(staticFS, "index.html")
		if readErr != nil {
			c.String(404, "index.html not found")
			return
		}
		c.Data(200, "text/html; charset=utf-8", data)
	}

	r.GET("/", serveIndex)

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path[1:]

		data, readErr := fs.ReadFile(staticFS, path)
		if readErr != nil {
			// SPA routing: unknown paths fall back to index.html
			serveIndex(c)
			return
		}
		c.Data(200, contentTypeFor(path), data)
	})
}

func contentTypeFor(path string) string {
	if len(path) < 4 {
		return "application/octet-stream"
	}
	switch path[len(path)-3:] {
	case ".js":
		return "application/javascript"
	case "css":
		return "text/css"
	case "tml":
		return "text/html"
	case "son":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "ico":
		return "image/x-icon"
	}
	return "application/octet-stream"
}
