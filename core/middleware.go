package core

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const sessionName = "member_session"

const (
	sessionKeyUserID = "user_id"
	sessionKeyCSRF   = "csrf_token"
	contextKeySess   = "session"
	contextKeyUser   = "current_user"
	contextKeyCSRF   = "csrf_token"
)

// SessionMiddleware ensures a session exists and applies consistent cookie
// options. The cookie is signed by the store; anything inside it is trusted
// only to the extent of that signature. A cookie that fails decoding
// (tampered blob, or signed under a rotated key) is untrusted input, not a
// server fault: the store hands back a fresh session alongside the error, and
// the request proceeds anonymously on that, replacing the bad cookie.
func SessionMiddleware(cfg Config, store *sessions.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, sessionName)
		if err != nil && session == nil {
			respondError(c, http.StatusInternalServerError, "session error")
			c.Abort()
			return
		}

		applySessionOptions(cfg, session)
		// Save to ensure options are persisted even for anonymous users.
		if err := session.Save(c.Request, c.Writer); err != nil {
			respondError(c, http.StatusInternalServerError, "failed to persist session")
			c.Abort()
			return
		}

		c.Set(contextKeySess, session)
		c.Next()
	}
}

// CurrentUserMiddleware resolves the session user_id into a request-scoped
// identity. It runs on every route, public ones included, so templates can
// show who is logged in. A user_id that no longer resolves to a row is
// treated as anonymous for this request; the session itself is left alone.
// A store failure is not "anonymous": it aborts the request like any other
// infrastructure fault rather than silently demoting a logged-in user.
func CurrentUserMiddleware(users UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		if session == nil {
			c.Next()
			return
		}
		id, ok := session.Values[sessionKeyUserID].(int64)
		if !ok {
			c.Next()
			return
		}
		u, err := users.FindByID(c.Request.Context(), id)
		if err != nil {
			log.Printf("identity lookup failed: %v", err)
			respondError(c, http.StatusInternalServerError, "internal error")
			c.Abort()
			return
		}
		if u != nil {
			c.Set(contextKeyUser, User{ID: u.ID, Username: u.Username})
		}
		c.Next()
	}
}

// CurrentUser returns the identity resolved for this request, if any.
func CurrentUser(c *gin.Context) (User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return User{}, false
	}
	u, ok := v.(User)
	return u, ok
}

// RequireLogin redirects anonymous requests to the login form and stops the
// chain before the wrapped handler runs.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.Redirect(http.StatusSeeOther, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// OriginCheckMiddleware rejects unsafe-method requests from foreign origins.
// Browsers send an Origin header on every form POST, same-origin ones
// included, so an Origin whose host matches the request's own Host is always
// accepted; the allow-list only widens that to trusted cross-origin callers.
// An absent header (non-browser clients, older same-origin navigation) is
// accepted too.
func OriginCheckMiddleware(cfg Config) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		allowed[strings.ToLower(o)] = struct{}{}
	}

	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		if origin == "" {
			if referer := c.GetHeader("Referer"); referer != "" {
				if u, err := url.Parse(referer); err == nil {
					origin = u.Scheme + "://" + u.Host
				}
			}
		}
		if origin == "" {
			c.Next()
			return
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, c.Request.Host) {
			c.Next()
			return
		}
		if _, ok := allowed[strings.ToLower(origin)]; !ok {
			respondError(c, http.StatusForbidden, "origin not allowed")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CSRFMiddleware issues and validates a per-session CSRF token. Forms submit
// it as a hidden csrf_token field; non-browser clients may use the
// X-CSRF-Token header instead.
func CSRFMiddleware(cfg Config, store *sessions.CookieStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessionFrom(c)
		var err error
		if session == nil {
			session, err = store.Get(c.Request, sessionName)
			if err != nil && session == nil {
				respondError(c, http.StatusInternalServerError, "session error")
				c.Abort()
				return
			}
		}

		token, _ := session.Values[sessionKeyCSRF].(string)
		if token == "" {
			token, err = generateCSRFToken()
			if err != nil {
				respondError(c, http.StatusInternalServerError, "failed to issue csrf token")
				c.Abort()
				return
			}
			session.Values[sessionKeyCSRF] = token
			applySessionOptions(cfg, session)
			if err := session.Save(c.Request, c.Writer); err != nil {
				respondError(c, http.StatusInternalServerError, "failed to persist session")
				c.Abort()
				return
			}
		}

		if !isSafeMethod(c.Request.Method) {
			submitted := c.PostForm("csrf_token")
			if submitted == "" {
				submitted = c.GetHeader("X-CSRF-Token")
			}
			if submitted == "" || submitted != token {
				respondError(c, http.StatusForbidden, "invalid csrf token")
				c.Abort()
				return
			}
		}

		// Expose token so pages and clients can read and reuse it.
		c.Writer.Header().Set("X-CSRF-Token", token)
		c.Set(contextKeyCSRF, token)
		c.Next()
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// sessionFrom fetches the session stashed by SessionMiddleware, or nil.
func sessionFrom(c *gin.Context) *sessions.Session {
	v, ok := c.Get(contextKeySess)
	if !ok {
		return nil
	}
	session, _ := v.(*sessions.Session)
	return session
}

func csrfTokenFrom(c *gin.Context) string {
	v, _ := c.Get(contextKeyCSRF)
	token, _ := v.(string)
	return token
}

func applySessionOptions(cfg Config, session *sessions.Session) {
	if session.Options == nil {
		session.Options = &sessions.Options{}
	}
	session.Options.Path = "/"
	session.Options.MaxAge = cfg.SessionMaxAge
	session.Options.HttpOnly = true
	session.Options.Secure = cfg.CookieSecure
	session.Options.SameSite = sameSiteFromString(cfg.CookieSameSite)
}

func sameSiteFromString(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}
