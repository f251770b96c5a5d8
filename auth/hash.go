package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// HashPassword returns the storable digest of a plaintext password: the
// base64-encoded SHA-256 of its UTF-8 bytes. The transform is deterministic
// and saltless on purpose — registration and login both recompute the digest
// and compare it against the stored column. Empty passwords are hashed like
// any other input; password policy is not this layer's concern.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to storedDigest. The digest
// comparison is constant-time; the externally observable contract is the
// same as a plain string compare.
func VerifyPassword(password string, storedDigest string) bool {
	computed := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}
