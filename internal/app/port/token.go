package port

import "donation_portal/internal/domain/entity"

// TokenProvider defines the interface for fetching token definitions.
type TokenProvider interface {
	// GetTokensByNetwork returns the token lists keyed by network identifier.
	GetTokensByNetwork(defs []entity.NetworkDefinition) (map[string][]entity.TokenInfo, error)
}
