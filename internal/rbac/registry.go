package rbac

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is an immutable table of role definitions.
// All methods are safe for concurrent use.
type Registry struct {
	roles    map[Role]RoleConfig
	order    []Role
	maxLevel int
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry built from DefaultRoles.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := NewRegistry(DefaultRoles()...)
		if err != nil {
			panic(err)
		}

		defaultRegistry = r
	})

	return defaultRegistry
}

// NewRegistry builds a registry from a role table. Names must be unique and
// every manageable role must be defined in the same table.
func NewRegistry(configs ...RoleConfig) (*Registry, error) {
	if len(configs) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{roles: make(map[Role]RoleConfig, len(configs))}

	for _, c := range configs {
		if _, ok := r.roles[c.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRole, c.Name)
		}

		r.roles[c.Name] = c.clone()
		r.order = append(r.order, c.Name)

		if c.Level > r.maxLevel {
			r.maxLevel = c.Level
		}
	}

	for _, c := range configs {
		for _, m := range c.ManageableRoles {
			if _, ok := r.roles[m]; !ok {
				return nil, fmt.Errorf("%w: %s (manageable by %s)", ErrUnknownRole, m, c.Name)
			}
		}
	}

	// Highest level first; ties keep table order.
	sort.SliceStable(r.order, func(i, j int) bool {
		return r.roles[r.order[i]].Level > r.roles[r.order[j]].Level
	})

	return r, nil
}

// ParseRole converts a raw role name into a known Role. Matching is exact:
// no case folding and no trimming.
func (r *Registry) ParseRole(name string) (Role, error) {
	role := Role(name)
	if _, ok := r.roles[role]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}

	return role, nil
}

// Lookup returns a copy of the role definition.
func (r *Registry) Lookup(role Role) (RoleConfig, error) {
	c, ok := r.roles[role]
	if !ok {
		return RoleConfig{}, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	return c.clone(), nil
}

// Permissions returns a copy of the permission set of role.
func (r *Registry) Permissions(role Role) ([]string, error) {
	c, err := r.Lookup(role)
	if err != nil {
		return nil, err
	}

	return c.Permissions, nil
}

// HasPermission reports whether role holds the wildcard or the exact tag.
func (r *Registry) HasPermission(role Role, tag string) (bool, error) {
	c, ok := r.roles[role]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	return Grants(c.Permissions, tag), nil
}

// HasMinLevel reports whether the level of role is at least threshold.
func (r *Registry) HasMinLevel(role Role, threshold int) (bool, error) {
	c, ok := r.roles[role]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	return c.Level >= threshold, nil
}

// CanManage reports whether manager may administer target.
func (r *Registry) CanManage(manager, target Role) (bool, error) {
	c, ok := r.roles[manager]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, manager)
	}

	if _, ok := r.roles[target]; !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownRole, target)
	}

	for _, m := range c.ManageableRoles {
		if m == target {
			return true, nil
		}
	}

	return false, nil
}

// ManageableRoles returns the roles that role may administer.
func (r *Registry) ManageableRoles(role Role) ([]RoleConfig, error) {
	c, ok := r.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	out := make([]RoleConfig, 0, len(c.ManageableRoles))
	for _, m := range c.ManageableRoles {
		out = append(out, r.roles[m].clone())
	}

	return out, nil
}

// Roles returns every role definition, highest level first.
func (r *Registry) Roles() []RoleConfig {
	out := make([]RoleConfig, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.roles[name].clone())
	}

	return out
}

// MaxLevel returns the highest level defined in the registry.
func (r *Registry) MaxLevel() int {
	return r.maxLevel
}

// IsSuperRole reports whether role holds the wildcard at the maximum level.
// Unknown roles are never super roles.
func (r *Registry) IsSuperRole(role Role) bool {
	c, ok := r.roles[role]
	if !ok {
		return false
	}

	return c.Level == r.maxLevel && Grants(c.Permissions, PermWildcard)
}

// InheritedPermissions returns the permissions of every lower-level role that
// role does not already hold, sorted. It is a display aid and is never used
// for access decisions.
func (r *Registry) InheritedPermissions(role Role) ([]string, error) {
	c, ok := r.roles[role]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	own := make(map[string]struct{}, len(c.Permissions))
	for _, p := range c.Permissions {
		own[p] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, other := range r.roles {
		if other.Level >= c.Level {
			continue
		}

		for _, p := range other.Permissions {
			if _, ok := own[p]; ok {
				continue
			}

			seen[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}

	sort.Strings(out)

	return out, nil
}
