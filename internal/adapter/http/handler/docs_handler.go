package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Wallet Ledger API</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="docs" data-url="{{.DocumentURL}}"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    const el = document.getElementById('docs');
    SwaggerUIBundle({ url: el.dataset.url, domNode: el, deepLinking: true });
  </script>
</body>
</html>`))

// DocsHandler serves the ledger's OpenAPI document and a browser view of it.
type DocsHandler struct {
	document []byte
	page     []byte
}

// NewDocsHandler renders the docs page once. An empty document disables both routes.
func NewDocsHandler(document []byte, documentURL string) *DocsHandler {
	h := &DocsHandler{document: document}
	if len(document) == 0 {
		return h
	}
	var buf bytes.Buffer
	if err := docsPage.Execute(&buf, struct{ DocumentURL string }{documentURL}); err == nil {
		h.page = buf.Bytes()
	}
	return h
}

// Page handles GET /swagger.
func (h *DocsHandler) Page(c *gin.Context) {
	if h.page == nil {
		response.Error(c, apperror.ErrRouteNotFound(c.Request.URL.Path))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}

// Document handles GET /swagger/spec.
func (h *DocsHandler) Document(c *gin.Context) {
	if len(h.document) == 0 {
		response.Error(c, apperror.ErrRouteNotFound(c.Request.URL.Path))
		return
	}
	c.Data(http.StatusOK, "application/yaml", h.document)
}
