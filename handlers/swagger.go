package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves the API description.
// - GET /swagger/index.html  -> Swagger UI loading the document below
// - GET /swagger/doc.json    -> OpenAPI JSON
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
    <title>MamaCare API - Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "MamaCare API", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "Error": { "type": "object", "properties": { "message": {"type":"string"}, "error": {"type":"string"}, "details": {"type":"string"} } }
    }
  },
  "paths": {
    "/api/users/register": { "post": { "summary": "Create an account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["firstName","lastName","email","password","lmp"],"properties":{"firstName":{"type":"string"},"lastName":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"},"lmp":{"type":"string","format":"date"},"dob":{"type":"string","format":"date"},"phone":{"type":"string"},"language":{"type":"string"}}}}}}, "responses": { "201": { "description": "profile with token" }, "400": { "description": "missing fields or duplicate email" } } } },
    "/api/users/login": { "post": { "summary": "Sign in", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "profile with token" }, "400": { "description": "invalid credentials" } } } },
    "/api/users/refresh": { "post": { "summary": "Exchange a refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new tokens" }, "401": { "description": "invalid refresh token" } } } },
    "/api/users/logout": { "post": { "summary": "Revoke the access token and refresh session", "security": [{"bearer": []}], "responses": { "200": { "description": "logged out" } } } },
    "/api/users/profile": {
      "get": { "summary": "Profile with pregnancy progress", "security": [{"bearer": []}], "responses": { "200": { "description": "profile" }, "401": { "description": "unauthenticated" } } },
      "put": { "summary": "Update profile", "security": [{"bearer": []}], "responses": { "200": { "description": "profile with fresh token" } } },
      "delete": { "summary": "Delete account and owned records", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } }
    },
    "/api/wellness": { "get": { "summary": "List own logs, newest first", "security": [{"bearer": []}], "responses": { "200": { "description": "logs" } } }, "post": { "summary": "Create log", "security": [{"bearer": []}], "responses": { "201": { "description": "log" } } } },
    "/api/wellness/{id}": { "get": { "summary": "Get log", "security": [{"bearer": []}], "responses": { "200": { "description": "log" }, "403": { "description": "not owner" }, "404": { "description": "not found" } } }, "put": { "summary": "Update log", "security": [{"bearer": []}], "responses": { "200": { "description": "log" } } }, "delete": { "summary": "Delete log", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/reminders": { "get": { "summary": "List own reminders, soonest first", "security": [{"bearer": []}], "responses": { "200": { "description": "reminders" } } }, "post": { "summary": "Create reminder", "security": [{"bearer": []}], "responses": { "201": { "description": "reminder" } } } },
    "/api/reminders/{id}": { "get": { "summary": "Get reminder", "security": [{"bearer": []}], "responses": { "200": { "description": "reminder" } } }, "put": { "summary": "Update reminder", "security": [{"bearer": []}], "responses": { "200": { "description": "reminder" } } }, "delete": { "summary": "Delete reminder", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/clinics": { "get": { "summary": "Clinic directory", "responses": { "200": { "description": "clinics" } } }, "post": { "summary": "Add clinic (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "clinic" }, "403": { "description": "not admin" } } } },
    "/api/clinics/{id}": { "put": { "summary": "Update clinic (admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "clinic" } } }, "delete": { "summary": "Delete clinic (admin)", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/pregnancy": { "get": { "summary": "All milestones", "responses": { "200": { "description": "milestones" } } }, "post": { "summary": "Add milestone (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "milestone" } } } },
    "/api/pregnancy/{week}": { "get": { "summary": "Milestone for a week", "responses": { "200": { "description": "milestone" }, "400": { "description": "invalid week" }, "404": { "description": "not found" } } } },
    "/api/pregnancy/{week}/guide": { "get": { "summary": "Week guide with baby size", "responses": { "200": { "description": "guide" } } } },
    "/api/guidance": { "get": { "summary": "Guidance by week", "parameters": [{"name":"week","in":"query","schema":{"type":"integer"}}], "responses": { "200": { "description": "entries" } } }, "post": { "summary": "Add guidance (admin)", "security": [{"bearer": []}], "responses": { "201": { "description": "entry" } } } },
    "/api/guidance/symptoms": { "get": { "summary": "Tips for symptoms", "parameters": [{"name":"symptom","in":"query","schema":{"type":"array","items":{"type":"string"}}}], "responses": { "200": { "description": "guidance" } } } },
    "/api/guidance/{id}/media": { "post": { "summary": "Upload media (admin)", "security": [{"bearer": []}], "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","properties":{"file":{"type":"string","format":"binary"}}}}}}, "responses": { "200": { "description": "entry with media" } } } },
    "/api/forum": { "get": { "summary": "Posts, newest first", "security": [{"bearer": []}], "parameters": [{"name":"birthClub","in":"query","schema":{"type":"string"}}], "responses": { "200": { "description": "posts" } } }, "post": { "summary": "Create post", "security": [{"bearer": []}], "responses": { "201": { "description": "post" } } } },
    "/api/forum/{id}": { "get": { "summary": "Get post", "security": [{"bearer": []}], "responses": { "200": { "description": "post" } } }, "put": { "summary": "Edit post", "security": [{"bearer": []}], "responses": { "200": { "description": "post" } } }, "delete": { "summary": "Delete post", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/forum/{id}/flag": { "post": { "summary": "Flag post", "security": [{"bearer": []}], "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } } },
    "/api/forum/{id}/comments": { "get": { "summary": "Comments, oldest first", "security": [{"bearer": []}], "responses": { "200": { "description": "comments" } } }, "post": { "summary": "Add comment", "security": [{"bearer": []}], "responses": { "201": { "description": "comment" } } } },
    "/api/forum/{id}/comments/{commentId}": { "delete": { "summary": "Delete own comment", "security": [{"bearer": []}], "responses": { "200": { "description": "deleted" } } } },
    "/api/forum/{id}/comments/{commentId}/flag": { "post": { "summary": "Flag comment", "security": [{"bearer": []}], "responses": { "200": { "description": "comment" } } } },
    "/api/calculator/lmp": { "get": { "summary": "Progress from LMP", "parameters": [{"name":"date","in":"query","required":true,"schema":{"type":"string","format":"date"}}], "responses": { "200": { "description": "progress" }, "400": { "description": "invalid or future date" } } } },
    "/api/calculator/conception": { "get": { "summary": "Progress from conception", "parameters": [{"name":"date","in":"query","required":true,"schema":{"type":"string","format":"date"}}], "responses": { "200": { "description": "progress" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
