// Package auth carries the caller identity resolved at the edge. Login and
// token issuance happen elsewhere; this service only reads roles.
package auth

import (
	"context"
	"errors"
	"strings"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
	RoleGuest = "guest"
)

var (
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrForbidden       = errors.New("auth: insufficient permissions")
)

type Principal struct {
	Subject string
	Roles   []string
}

func (p Principal) HasRole(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	for _, r := range p.Roles {
		if strings.ToLower(strings.TrimSpace(r)) == role {
			return true
		}
	}
	return false
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// Restricted messages name the roles allowed to dispatch them; any one suffices.
type Restricted interface {
	AllowedRoles() []string
}

// RoleAuthorizer enforces Restricted on commands and queries. Unrestricted
// messages pass without a principal.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(ctx context.Context, message any) error {
	r, ok := message.(Restricted)
	if !ok {
		return nil
	}
	p, ok := FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	for _, role := range r.AllowedRoles() {
		if p.HasRole(role) {
			return nil
		}
	}
	return ErrForbidden
}

// BackOffice is embedded by admin-only messages.
type BackOffice struct{}

func (BackOffice) AllowedRoles() []string { return []string{RoleAdmin, RoleStaff} }
