// Command apex-mcp serves the sync tools over the Model Context Protocol.
// By default it speaks MCP over stdio; with -http it serves the
// streamable HTTP transport plus a health endpoint.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/MartinT518/apex-sync/pkg/framework"
	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
	mcpserver "github.com/MartinT518/apex-sync/pkg/mcp"
)

func main() {
	rc, flush := framework.Setup("apex-mcp")
	defer flush()

	httpAddr := flag.String("http", "", "serve MCP over streamable HTTP on this address instead of stdio (e.g. :8080)")
	flag.Parse()

	tokenURL := rc.Config.TokenURL
	if tokenURL == "" {
		tokenURL = garmin.DefaultTokenURL
	}
	source, err := oauth.NewFileTokenSource(rc.Config.TokenDir, tokenURL)
	if err != nil {
		rc.Logger.Error("Token store unavailable", "error", err)
		flush()
		os.Exit(1)
	}

	s := mcpserver.New(garmin.NewClient(source), rc.Config, framework.Version, rc.Logger)

	if *httpAddr != "" {
		serveHTTP(rc, s, *httpAddr)
		return
	}

	rc.Logger.Info("Serving MCP over stdio")
	if err := server.ServeStdio(s); err != nil {
		rc.Logger.Error("MCP server exited", "error", err)
		flush()
		os.Exit(1)
	}
}

func serveHTTP(rc *framework.RunContext, s *server.MCPServer, addr string) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/mcp", server.NewStreamableHTTPServer(s))

	rc.Logger.Info("Serving MCP over HTTP", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		rc.Logger.Error("HTTP server exited", "error", err)
		os.Exit(1)
	}
}
