package rest

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
)

// pageGate は保護ページへのアクセスを制御します。未認証ならサインインへ、
// ロールと合わないダッシュボードなら自分のロールのダッシュボードへ
// リダイレクトします。
func pageGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := claimsFrom(c); !ok {
			target := "/sign-in?redirect_url=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		path := c.Request.URL.Path
		role := roleFrom(c)
		switch {
		case strings.HasPrefix(path, "/admin") && role != authz.RoleAdmin:
			c.Redirect(http.StatusFound, "/employee/dashboard")
			c.Abort()
		case strings.HasPrefix(path, "/employee") && role == authz.RoleAdmin:
			c.Redirect(http.StatusFound, "/admin/dashboard")
			c.Abort()
		default:
			c.Next()
		}
	}
}

func landingPage(c *gin.Context) {
	renderPage(c, "TaskDesk", "Sign in to manage your team's tasks.")
}

func signInPage(c *gin.Context) {
	renderPage(c, "Sign in", "Sign in with your work account.")
}

func signUpPage(c *gin.Context) {
	renderPage(c, "Sign up", "Accounts are provisioned by an administrator.")
}

// dashboardPage はロールに応じたダッシュボードへ振り分けます。
func dashboardPage(c *gin.Context) {
	if roleFrom(c) == authz.RoleAdmin {
		c.Redirect(http.StatusFound, "/admin/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/employee/dashboard")
}

func adminDashboardPage(c *gin.Context) {
	renderPage(c, "Admin dashboard", "Manage employees and tasks.")
}

func employeeDashboardPage(c *gin.Context) {
	renderPage(c, "My tasks", "View and update your assigned tasks.")
}

func renderPage(c *gin.Context, title, body string) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, "<!DOCTYPE html><html><head><title>%s</title></head><body><h1>%s</h1><p>%s</p></body></html>", title, title, body)
}
