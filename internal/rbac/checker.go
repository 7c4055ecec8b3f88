package rbac

import "strings"

// Checker answers {role, operation} -> allow/deny from a static table.
type Checker struct {
	table map[string]map[string]struct{}
}

// NewChecker builds a Checker from the default capability table.
func NewChecker() *Checker {
	return NewCheckerWithTable(defaultTable)
}

// NewCheckerWithTable builds a Checker from an explicit role -> operations map.
func NewCheckerWithTable(table map[string][]string) *Checker {
	compiled := make(map[string]map[string]struct{}, len(table))
	for role, ops := range table {
		set := make(map[string]struct{}, len(ops))
		for _, op := range ops {
			op = strings.TrimSpace(strings.ToLower(op))
			if op == "" {
				continue
			}
			set[op] = struct{}{}
		}
		compiled[strings.ToLower(role)] = set
	}
	return &Checker{table: compiled}
}

// Allow reports whether the role may perform the operation.
func (c *Checker) Allow(role, operation string) bool {
	if c == nil {
		return false
	}
	role = strings.TrimSpace(strings.ToLower(role))
	operation = strings.TrimSpace(strings.ToLower(operation))
	if role == "" || operation == "" {
		return false
	}
	if role == RoleAdmin {
		return true
	}
	ops, ok := c.table[role]
	if !ok {
		return false
	}
	_, ok = ops[operation]
	return ok
}
