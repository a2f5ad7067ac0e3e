package domain

import "time"

// TokenIssuer signs a token authorizing mutations on a board for one client session.
type TokenIssuer interface {
	Issue(boardID, sessionID string, expiry time.Duration) (string, error)
}

// TokenVerifier validates a token and returns the board and session it was issued for.
type TokenVerifier interface {
	Verify(token string) (boardID, sessionID string, err error)
}

// KeyHasher hashes board access keys for storage and compares presented keys
// against a stored hash.
type KeyHasher interface {
	Hash(key string) (string, error)
	Compare(hash, key string) error
}
