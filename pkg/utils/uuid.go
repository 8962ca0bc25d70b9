package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	keyLength  = 20
)

// GenerateKey returns an opaque record key.
func GenerateKey() (string, error) {
	return gonanoid.Generate(characters, keyLength)
}
