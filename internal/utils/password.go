package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordKeyLen  = 64
	passwordSaltLen = 16
)

// CreatePasswordRecord derives a PBKDF2-SHA512 hash from the plain password
// using a fresh random salt. Both hash and salt are stored; the plain
// password never is.
func CreatePasswordRecord(plain string, iterations int) (hash, salt []byte, err error) {
	salt = make([]byte, passwordSaltLen)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash = pbkdf2.Key([]byte(plain), salt, iterations, passwordKeyLen, sha512.New)
	return hash, salt, nil
}

// VerifyPassword re-derives the key and compares in constant time.
func VerifyPassword(plain string, hash, salt []byte, iterations int) bool {
	derived := pbkdf2.Key([]byte(plain), salt, iterations, len(hash), sha512.New)
	return subtle.ConstantTimeCompare(derived, hash) == 1
}
