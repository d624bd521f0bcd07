package core

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, store *sessions.CookieStore, authService AuthService, users UserRepository) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(pageTemplates())

	// Global middleware: origin check -> session -> CSRF -> identity loader.
	// The identity loader runs on every route, so even public pages know who
	// is logged in.
	r.Use(OriginCheckMiddleware(cfg))
	r.Use(SessionMiddleware(cfg, store))
	r.Use(CSRFMiddleware(cfg, store))
	r.Use(CurrentUserMiddleware(users))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		renderPage(c, http.StatusOK, "index", "")
	})

	r.GET("/me", RequireLogin(), func(c *gin.Context) {
		renderPage(c, http.StatusOK, "me", "")
	})

	auth := r.Group("/auth")
	{
		auth.GET("/register", func(c *gin.Context) {
			renderPage(c, http.StatusOK, "register", "")
		})

		auth.POST("/register", func(c *gin.Context) {
			username := c.PostForm("username")
			password := c.PostForm("password")

			if _, err := authService.Register(c.Request.Context(), username, password); err != nil {
				switch {
				case errors.Is(err, ErrUsernameRequired),
					errors.Is(err, ErrPasswordRequired),
					errors.Is(err, ErrUserExists):
					renderPage(c, http.StatusOK, "register", err.Error())
				default:
					log.Printf("register failed: %v", err)
					respondError(c, http.StatusInternalServerError, "internal error")
				}
				return
			}
			c.Redirect(http.StatusSeeOther, "/auth/login")
		})

		auth.GET("/login", func(c *gin.Context) {
			renderPage(c, http.StatusOK, "login", "")
		})

		auth.POST("/login", func(c *gin.Context) {
			username := c.PostForm("username")
			password := c.PostForm("password")

			user, err := authService.Authenticate(c.Request.Context(), username, password)
			if err != nil {
				switch {
				case errors.Is(err, ErrIncorrectUsername), errors.Is(err, ErrIncorrectPassword):
					// The session is left untouched on a failed attempt.
					renderPage(c, http.StatusOK, "login", err.Error())
				default:
					log.Printf("login failed: %v", err)
					respondError(c, http.StatusInternalServerError, "internal error")
				}
				return
			}

			session := sessionFrom(c)
			if session == nil {
				respondError(c, http.StatusInternalServerError, "session error")
				return
			}

			// Rotate: discard all prior values before binding the new identity.
			session.Values = map[interface{}]interface{}{}
			session.Values[sessionKeyUserID] = user.ID
			applySessionOptions(cfg, session)
			if err := session.Save(c.Request, c.Writer); err != nil {
				respondError(c, http.StatusInternalServerError, "failed to persist session")
				return
			}
			c.Redirect(http.StatusSeeOther, "/")
		})

		auth.GET("/logout", func(c *gin.Context) {
			session := sessionFrom(c)
			if session != nil {
				// Clear everything, not just the identity. A request with no
				// active session ends up here too; clearing an empty session
				// is a no-op.
				session.Values = map[interface{}]interface{}{}
				applySessionOptions(cfg, session)
				if err := session.Save(c.Request, c.Writer); err != nil {
					respondError(c, http.StatusInternalServerError, "failed to persist session")
					return
				}
			}
			c.Redirect(http.StatusSeeOther, "/")
		})
	}

	return r
}
