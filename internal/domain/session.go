package domain

import "context"

type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAreaAdmin    Role = "area_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleStaff        Role = "staff"
)

// Session is the authenticated caller of one request. It lives in the
// request context and dies with it.
type Session struct {
	UID       string
	Email     string
	Role      Role
	AreaID    string
	CompanyID string
}

// CanReview reports whether the session may approve or reject req.
func (s *Session) CanReview(req *AccessRequest) bool {
	if s == nil || req == nil {
		return false
	}
	switch s.Role {
	case RoleSuperAdmin:
		return true
	case RoleAreaAdmin:
		return s.AreaID != "" && s.AreaID == req.AreaID
	case RoleCompanyAdmin:
		return s.CompanyID != "" && s.CompanyID == req.CompanyID
	}
	return false
}

// CanRedeem reports whether the session may hand out wristbands.
func (s *Session) CanRedeem() bool {
	if s == nil {
		return false
	}
	return s.Role == RoleStaff || s.Role == RoleSuperAdmin
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}
