package core

import (
	"github.com/gin-gonic/gin"
)

// pageData is the common payload handed to every page template.
type pageData struct {
	User      *User
	Error     string
	CSRFToken string
}

// renderPage renders a named page template with the request-scoped identity,
// the CSRF token for forms, and an optional user-facing error message.
func renderPage(c *gin.Context, status int, name, errMsg string) {
	data := pageData{Error: errMsg, CSRFToken: csrfTokenFrom(c)}
	if u, ok := CurrentUser(c); ok {
		data.User = &u
	}
	c.HTML(status, name, data)
}

// respondError sends a bare plain-text failure; used where the normal form
// re-render path is unavailable (session or infrastructure failures).
func respondError(c *gin.Context, status int, message string) {
	c.String(status, message)
}
