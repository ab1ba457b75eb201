package identity

import (
	"context"
	"strings"
)

type contextKey struct{}

// Identity is the signed-in user as asserted by the directory gateway.
type Identity struct {
	Mail       string `json:"mail"`
	UPN        string `json:"upn"`
	Name       string `json:"name"`
	Department string `json:"department,omitempty"`
	JobTitle   string `json:"job_title,omitempty"`
	Admin      bool   `json:"is_admin"`
}

// Email prefers the mailbox address and falls back to the UPN.
func (i *Identity) Email() string {
	if i.Mail != "" {
		return strings.ToLower(i.Mail)
	}
	return strings.ToLower(i.UPN)
}

// Claims renders the directory claims string stored on bookings.
func (i *Identity) Claims() string {
	return "i:0#.f|membership|" + strings.ToLower(i.UPN)
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}

// AdminSet matches users against the configured administrator addresses.
type AdminSet map[string]struct{}

func NewAdminSet(emails []string) AdminSet {
	set := make(AdminSet, len(emails))
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

func (s AdminSet) Contains(upn, mail string) bool {
	for _, candidate := range []string{upn, mail} {
		if candidate == "" {
			continue
		}
		if _, ok := s[strings.ToLower(candidate)]; ok {
			return true
		}
	}
	return false
}
