package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is the one-shot message shown after a form post. It travels in the
// redirect query string.
type Notice struct {
	Kind string
	Text string
}

// NoticeFrom reads the notice of the current request, or nil.
func NoticeFrom(c *gin.Context) *Notice {
	text := strings.TrimSpace(c.Query("notice"))
	if text == "" {
		return nil
	}
	kind := c.Query("kind")
	if kind != NoticeError {
		kind = NoticeSuccess
	}
	return &Notice{Kind: kind, Text: text}
}

// RedirectNotice redirects to path (which may carry a query and a fragment)
// with the notice attached.
func RedirectNotice(c *gin.Context, path, kind, text string) {
	c.Redirect(http.StatusSeeOther, WithNotice(path, kind, text))
}

// WithNotice appends the notice parameters to path.
func WithNotice(path, kind, text string) string {
	fragment := ""
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path, fragment = path[:i], path[i:]
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	q := url.Values{}
	q.Set("notice", text)
	q.Set("kind", kind)
	return path + sep + q.Encode() + fragment
}

// SafeNext returns next when it is a local absolute path, else fallback.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}
