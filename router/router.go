// Package router maps application paths to views and guards protected
// ones behind the auth session, the way the web client's global
// navigation hook did.
package router

import (
	"context"

	"github.com/casbin/casbin"
	"github.com/sirupsen/logrus"

	"homesage_client/domain"
)

// Variant selects between the two deployed route tables: one ships an
// open /info page, the other a guarded /notices page.
type Variant int

const (
	VariantInfo Variant = iota
	VariantNotices
)

type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
}

// SessionChecker is the slice of the auth store the guard needs.
type SessionChecker interface {
	CheckAuthStatus(ctx context.Context)
	IsAuthenticated() bool
	UserRole() domain.UserRole
}

type Notifier interface {
	Notify(message string)
}

type Router struct {
	routes   map[string]Route
	home     Route
	auth     SessionChecker
	notifier Notifier
	logger   *logrus.Logger
	enforcer *casbin.Enforcer
	strict   bool
}

type Option func(*Router)

// WithEnforcer consults a casbin policy as (role, path, GET) on top of
// the authentication check.
func WithEnforcer(enforcer *casbin.Enforcer) Option {
	return func(r *Router) {
		r.enforcer = enforcer
	}
}

// WithStrictGuard additionally requires a decoded role on protected
// navigations, not just the authenticated flag.
func WithStrictGuard() Option {
	return func(r *Router) {
		r.strict = true
	}
}

func New(variant Variant, auth SessionChecker, logger *logrus.Logger, notifier Notifier, opts ...Option) *Router {
	home := Route{Path: "/", Name: "home"}
	routes := []Route{
		home,
		{Path: "/mypage", Name: "MyPage", RequiresAuth: true},
		{Path: "/analyze", Name: "Analyze", RequiresAuth: true},
		{Path: "/chatbot", Name: "ChatBot", RequiresAuth: true},
	}
	switch variant {
	case VariantNotices:
		routes = append(routes, Route{Path: "/notices", Name: "Notices", RequiresAuth: true})
	default:
		routes = append(routes, Route{Path: "/info", Name: "Info"})
	}

	table := make(map[string]Route, len(routes))
	for _, route := range routes {
		table[route.Path] = route
	}

	router := &Router{
		routes:   table,
		home:     home,
		auth:     auth,
		notifier: notifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(router)
	}
	return router
}

// Result is the guarded navigation outcome. Redirected means the guard
// sent the user back to home instead of the requested route.
type Result struct {
	Route      Route
	Redirected bool
}

func (r *Router) Routes() []Route {
	routes := make([]Route, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	return routes
}

// Navigate resolves a path through the guard. Protected routes trigger
// a fresh session check first; a failed check redirects home with a
// blocking notification.
func (r *Router) Navigate(ctx context.Context, path string) Result {
	route, ok := r.routes[path]
	if !ok {
		r.logger.Infof("Router.Navigate : unknown path %s", path)
		return Result{Route: r.home, Redirected: true}
	}

	if !route.RequiresAuth {
		return Result{Route: route}
	}

	r.auth.CheckAuthStatus(ctx)

	if !r.auth.IsAuthenticated() {
		r.notifier.Notify(domain.LoginRequiredPage)
		return Result{Route: r.home, Redirected: true}
	}

	role := r.auth.UserRole()
	if r.strict && role == "" {
		r.logger.Errorln(domain.MissingRoleInformation)
		return Result{Route: r.home, Redirected: true}
	}

	if r.enforcer != nil {
		subject := string(role)
		if subject == "" {
			subject = "Unauthenticated"
		}
		allowed, err := r.enforcer.EnforceSafe(subject, path, "GET")
		if err != nil {
			r.logger.Errorf("Router.Navigate : enforce error: %s", err)
			return Result{Route: r.home, Redirected: true}
		}
		if !allowed {
			r.logger.Warnf("Router.Navigate : %s forbidden for role %s", path, subject)
			return Result{Route: r.home, Redirected: true}
		}
	}

	return Result{Route: route}
}

// LoadEnforcer reads the casbin model and policy files for the guard.
func LoadEnforcer(modelPath, policyPath string) (*casbin.Enforcer, error) {
	return casbin.NewEnforcerSafe(modelPath, policyPath)
}
