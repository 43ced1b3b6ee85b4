package middleware

import (
	"net/url"
	"strings"
)

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

type Decision struct {
	Action   Action
	Location string
}

// Routes classifies request paths. Public and Auth entries match exactly, APIAuthPrefix matches
// as a prefix.
type Routes struct {
	Public               []string
	Auth                 []string
	APIAuthPrefix        string
	DefaultLoginRedirect string
	Login                string
}

func DefaultRoutes() Routes {
	return Routes{
		Public: []string{"/", "/new-verification"},
		Auth: []string{
			"/auth/login",
			"/auth/register",
			"/auth/error",
			"/auth/reset",
			"/auth/new-password",
		},
		APIAuthPrefix:        "/api/auth",
		DefaultLoginRedirect: "/dashboard",
		Login:                "/auth/login",
	}
}

// Decide applies the redirect rules in order: api-auth prefix, auth routes, public routes,
// protected routes.
func (r Routes) Decide(path string, authenticated bool) Decision {
	path = normalize(path)

	if r.underAPIAuth(path) {
		return Decision{Action: Allow}
	}
	if contains(r.Auth, path) {
		if authenticated {
			return Decision{Action: Redirect, Location: r.DefaultLoginRedirect}
		}
		return Decision{Action: Allow}
	}
	if contains(r.Public, path) {
		return Decision{Action: Allow}
	}
	if !authenticated {
		return Decision{Action: Redirect, Location: r.loginURL(path)}
	}
	return Decision{Action: Allow}
}

func (r Routes) loginURL(callback string) string {
	return r.Login + "?callbackUrl=" + url.QueryEscape(callback)
}

// underAPIAuth matches the prefix itself and paths below it, not siblings such as /api/authz.
func (r Routes) underAPIAuth(path string) bool {
	if r.APIAuthPrefix == "" {
		return false
	}
	prefix := normalize(r.APIAuthPrefix)
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

func contains(list []string, path string) bool {
	for _, p := range list {
		if normalize(p) == path {
			return true
		}
	}
	return false
}
