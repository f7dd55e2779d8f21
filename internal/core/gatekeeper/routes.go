package gatekeeper

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// Classification is the access requirement of a locale-stripped path.
type Classification struct {
	RequiresAuth bool
	// RequiredRole is empty when any authenticated user may proceed.
	RequiredRole domain.Role
}

type roleRoute struct {
	prefix string
	role   domain.Role
}

// RouteTable is the immutable route classification built at start-up.
// It is safe for concurrent use.
type RouteTable struct {
	roleRoutes   []roleRoute
	authPrefixes []string
	dashboards   map[domain.Role]string
}

// NewRouteTable validates and copies the given tables. Prefixes and dashboard
// paths are locale-less and must start with "/". Every role needs a dashboard.
func NewRouteTable(roleRoutes map[string]domain.Role, authPrefixes []string, dashboards map[domain.Role]string) (*RouteTable, error) {
	t := &RouteTable{dashboards: make(map[domain.Role]string, len(dashboards))}

	for prefix, role := range roleRoutes {
		if err := checkPrefix(prefix); err != nil {
			return nil, err
		}
		if _, ok := domain.ParseRole(string(role)); !ok {
			return nil, fmt.Errorf("route table: prefix %q maps to unknown role %q", prefix, role)
		}
		t.roleRoutes = append(t.roleRoutes, roleRoute{prefix: normalizePrefix(prefix), role: role})
	}
	for _, prefix := range authPrefixes {
		if err := checkPrefix(prefix); err != nil {
			return nil, err
		}
		t.authPrefixes = append(t.authPrefixes, normalizePrefix(prefix))
	}
	for _, role := range domain.Roles() {
		path, ok := dashboards[role]
		if !ok {
			return nil, fmt.Errorf("route table: no dashboard for role %q", role)
		}
		if err := checkPrefix(path); err != nil {
			return nil, err
		}
		t.dashboards[role] = path
	}

	// Longest prefix first so that the first match is the most specific one.
	sort.SliceStable(t.roleRoutes, func(i, j int) bool {
		return len(t.roleRoutes[i].prefix) > len(t.roleRoutes[j].prefix)
	})
	sort.SliceStable(t.authPrefixes, func(i, j int) bool {
		return len(t.authPrefixes[i]) > len(t.authPrefixes[j])
	})
	return t, nil
}

// DefaultRouteTable returns the portal's route tables.
func DefaultRouteTable() *RouteTable {
	t, err := NewRouteTable(
		map[string]domain.Role{
			"/dashboard/investor":         domain.RoleInvestor,
			"/dashboard/broker":           domain.RoleBroker,
			"/dashboard/lawyer":           domain.RoleLawyer,
			"/dashboard/mortgage-advisor": domain.RoleMortgageAdvisor,
		},
		[]string{"/dashboard", "/properties", "/documents", "/profile", "/settings"},
		map[domain.Role]string{
			domain.RoleInvestor:        "/dashboard/investor",
			domain.RoleBroker:          "/dashboard/broker",
			domain.RoleLawyer:          "/dashboard/lawyer",
			domain.RoleMortgageAdvisor: "/dashboard/mortgage-advisor",
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// Classify reports what path requires. Role-restricted prefixes win over
// generic authenticated prefixes; within each table the longest matching
// prefix wins.
func (t *RouteTable) Classify(path string) Classification {
	for _, r := range t.roleRoutes {
		if hasPathPrefix(path, r.prefix) {
			return Classification{RequiresAuth: true, RequiredRole: r.role}
		}
	}
	for _, prefix := range t.authPrefixes {
		if hasPathPrefix(path, prefix) {
			return Classification{RequiresAuth: true}
		}
	}
	return Classification{}
}

// Dashboard returns the locale-less home path of role.
func (t *RouteTable) Dashboard(role domain.Role) string {
	if path, ok := t.dashboards[role]; ok {
		return path
	}
	return t.dashboards[domain.DefaultRole]
}

func checkPrefix(p string) error {
	if !strings.HasPrefix(p, "/") {
		return fmt.Errorf("route table: path %q must start with /", p)
	}
	return nil
}

func normalizePrefix(p string) string {
	if len(p) > 1 {
		return strings.TrimSuffix(p, "/")
	}
	return p
}

// hasPathPrefix matches whole segments: "/properties" covers
// "/properties/42" but not "/propertiesx".
func hasPathPrefix(path, prefix string) bool {
	if prefix == "/" {
		return true
	}
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}
