package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID    ctxKey = "user_id"
	CtxKeySessionID ctxKey = "session_id"
	CtxKeyRole      ctxKey = "role"
	CtxKeySubRole   ctxKey = "sub_role"
	CtxKeyOrg       ctxKey = "org"
	CtxKeyUsername  ctxKey = "username"
)

// UserIDFromCtx returns the authenticated subject's user ID, or "" when the
// request carries no resolved session.
func UserIDFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeyUserID)
}

// SessionIDFromCtx returns the resolved session ID, or "".
func SessionIDFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeySessionID)
}

// RoleFromCtx returns the subject's base role name, or "".
func RoleFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeyRole)
}

// SubRoleFromCtx returns the subject's acting sub-role name, or "".
func SubRoleFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeySubRole)
}

// OrgFromCtx returns the subject's organization affiliation, or "".
func OrgFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeyOrg)
}

// UsernameFromCtx returns the subject's username, or "".
func UsernameFromCtx(ctx context.Context) string {
	return stringFromCtx(ctx, CtxKeyUsername)
}

func stringFromCtx(ctx context.Context, key ctxKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
