package session

import "github.com/google/uuid"

// uuidGenerator issues random (v4) session ids. Session ids are bearer
// tokens, so they must not be guessable from creation time.
type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.New().String()
}
