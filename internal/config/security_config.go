// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic   SecurityLevel = iota // No authentication
	SecurityPush                          // Event push token required
	SecurityStaff                         // Firebase ID token with staff or super admin role
	SecurityReviewer                      // Firebase ID token with a reviewing role
)

// Route names used by the HTTP router.
const (
	RouteHealth        = "health"
	RouteEventPush     = "events.access_requests"
	RouteReview        = "access_requests.review"
	RouteRedeem        = "access_requests.redeem"
	RouteArtifactFetch = "artifacts.fetch"
)

// EndpointSecurityConfig maps routes to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	RouteHealth:        SecurityPublic,
	RouteArtifactFetch: SecurityPublic, // credential URLs are public by construction

	RouteEventPush: SecurityPush,

	RouteRedeem: SecurityStaff,
	RouteReview: SecurityReviewer,
}

// GetSecurityLevel returns the security level for a route, defaulting to
// the strictest level for unknown routes
func GetSecurityLevel(route string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[route]; ok {
		return level
	}
	return SecurityReviewer
}
