package auth

import (
	"fmt"

	"github.com/SamFelix03/cummadashboard/internal/config"
	"github.com/SamFelix03/cummadashboard/internal/models"

	"github.com/casbin/casbin"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// defaultPolicy maps each role to the route prefixes it may use.
var defaultPolicy = [][]string{
	{string(models.UserTypeStartup), "/api/auth/*", "(GET)|(POST)"},
	{string(models.UserTypeStartup), "/api/catalog*", "GET"},
	{string(models.UserTypeStartup), "/api/startup/*", "(GET)|(POST)|(PATCH)"},

	{string(models.UserTypeServiceProvider), "/api/auth/*", "(GET)|(POST)"},
	{string(models.UserTypeServiceProvider), "/api/facilities*", "(GET)|(POST)|(PATCH)|(DELETE)"},
	{string(models.UserTypeServiceProvider), "/api/bookings*", "(GET)|(POST)"},
	{string(models.UserTypeServiceProvider), "/api/dashboard", "GET"},
	{string(models.UserTypeServiceProvider), "/api/service-provider/*", "(GET)|(PATCH)"},
}

// Authorizer decides which role may call which route.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer loads the casbin model and policy from files when both
// paths are configured, otherwise uses the built-in policy.
func NewAuthorizer(cfg config.RBACConfig) (*Authorizer, error) {
	if cfg.ModelPath != "" && cfg.PolicyPath != "" {
		e, err := casbin.NewEnforcerSafe(cfg.ModelPath, cfg.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("load rbac files: %w", err)
		}
		e.EnableLog(false)
		return &Authorizer{enforcer: e}, nil
	}

	e, err := casbin.NewEnforcerSafe(casbin.NewModel(rbacModel))
	if err != nil {
		return nil, fmt.Errorf("init rbac enforcer: %w", err)
	}
	e.EnableLog(false)
	for _, rule := range defaultPolicy {
		e.AddPolicy(rule[0], rule[1], rule[2])
	}
	return &Authorizer{enforcer: e}, nil
}

// Allowed reports whether role may perform method on path.
func (a *Authorizer) Allowed(role models.UserType, path, method string) (bool, error) {
	return a.enforcer.EnforceSafe(string(role), path, method)
}
