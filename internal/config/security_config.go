// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityAccess                      // Staff access token required
	SecurityAdmin                       // Access token with the ADMIN role
)

// EndpointSecurityConfig maps named HTTP routes and full gRPC method names to
// their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"health":                       SecurityPublic,
	"metrics":                      SecurityPublic,
	"auth.login":                   SecurityPublic,
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,

	// Rentals
	"rentals.create":        SecurityAccess,
	"rentals.list":          SecurityAccess,
	"rentals.get":           SecurityAccess,
	"rentals.start":         SecurityAccess,
	"rentals.return":        SecurityAccess,
	"rentals.cancel":        SecurityAccess,
	"rentals.overdue":       SecurityAccess,
	"rentals.accessories":   SecurityAccess,
	"rentals.payments.list": SecurityAccess,
	"rentals.payments.add":  SecurityAccess,

	// Payments
	"payments.status": SecurityAccess,

	// Inspections
	"inspections.get":    SecurityAccess,
	"inspections.save":   SecurityAccess,
	"inspections.settle": SecurityAccess,

	// Settings
	"settings.settlement.get":    SecurityAccess,
	"settings.settlement.update": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a given route name or gRPC method
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAdmin
}
