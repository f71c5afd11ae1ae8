package utils

import "context"

type contextKey string

const (
	AdminSubjectKey contextKey = "admin_subject"
	AdminRoleKey    contextKey = "admin_role"
)

const RoleAdmin = "admin"

// SetAdminContext marks the request as carrying a verified admin session.
func SetAdminContext(ctx context.Context, subject, role string) context.Context {
	ctx = context.WithValue(ctx, AdminSubjectKey, subject)
	ctx = context.WithValue(ctx, AdminRoleKey, role)
	return ctx
}

func IsAdmin(ctx context.Context) bool {
	role, _ := ctx.Value(AdminRoleKey).(string)
	return role == RoleAdmin
}

func GetAdminSubject(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(AdminSubjectKey).(string)
	return sub, ok && sub != ""
}
