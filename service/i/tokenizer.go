package i

import (
	"time"
)

// ClaimGameID is the claim that binds a token to a single game session.
const ClaimGameID = "gameID"

// Tokenizer issues and verifies the tokens handed to players.
type Tokenizer interface {
	// Generate signs the given claims into a token that expires after expTime.
	Generate(claims map[string]interface{}, expTime time.Duration) (string, error)

	// Decode validates a token and returns its claims.
	Decode(token string) (map[string]interface{}, error)
}
