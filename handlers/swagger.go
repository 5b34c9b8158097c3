package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the dashboard API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>ytdash API - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the auth and data routes.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "ytdash", "version": "v0.1.0" },
  "components": {
    "securitySchemes": { "session": { "type": "apiKey", "in": "cookie", "name": "ytdash.sid" } },
    "responses": {
      "Unauthorized": { "description": "no valid session", "content": { "application/json": { "schema": {"type":"object","properties":{"error":{"type":"string","example":"Authentication required"}}}}}},
      "UpstreamError": { "description": "upstream failure, static message", "content": { "application/json": { "schema": {"type":"object","properties":{"error":{"type":"string"}}}}}}
    }
  },
  "paths": {
    "/auth/google": { "get": { "summary": "Start Google login", "responses": { "302": { "description": "redirect to Google consent" } } } },
    "/auth/google/callback": { "get": { "summary": "Complete Google login", "parameters": [{"name":"code","in":"query","schema":{"type":"string"}},{"name":"state","in":"query","schema":{"type":"string"}}], "responses": { "302": { "description": "redirect to the dashboard, or to the frontend root on failure" } } } },
    "/auth/logout": { "get": { "summary": "Destroy the session", "responses": { "200": { "description": "logged out" }, "500": { "description": "Logout failed" } } } },
    "/auth/status": { "get": { "summary": "Session status", "responses": { "200": { "description": "authenticated flag and profile" } } } },
    "/api/youtube/channel": { "get": { "summary": "Own channel", "security": [{"session":[]}], "responses": { "200": { "description": "channels list" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/playlists": { "get": { "summary": "Own playlists (up to 50)", "security": [{"session":[]}], "responses": { "200": { "description": "playlists list" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/subscriptions": { "get": { "summary": "Subscriptions (up to 50)", "security": [{"session":[]}], "responses": { "200": { "description": "subscriptions list" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/liked-videos": { "get": { "summary": "Liked videos (up to 50)", "security": [{"session":[]}], "responses": { "200": { "description": "videos list" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/watch-history": { "get": { "summary": "Watch history playlist items", "security": [{"session":[]}], "responses": { "200": { "description": "playlist items" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/playlist/{playlistId}/videos": { "get": { "summary": "Playlist items (up to 50)", "security": [{"session":[]}], "parameters": [{"name":"playlistId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "playlist items" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/search": { "get": { "summary": "Search videos", "security": [{"session":[]}], "parameters": [{"name":"q","in":"query","required":true,"schema":{"type":"string"}},{"name":"maxResults","in":"query","schema":{"type":"integer","default":25,"minimum":1,"maximum":50}}], "responses": { "200": { "description": "search results" }, "400": { "description": "Search query is required" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/video/{videoId}": { "get": { "summary": "Video details", "security": [{"session":[]}], "parameters": [{"name":"videoId","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "videos list" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/api/youtube/latest-videos": { "get": { "summary": "Feed sampled from subscriptions", "security": [{"session":[]}], "responses": { "200": { "description": "items, count and failed lookups" }, "401": {"$ref":"#/components/responses/Unauthorized"}, "500": {"$ref":"#/components/responses/UpstreamError"} } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "exposition format" } } } }
  }
}`
