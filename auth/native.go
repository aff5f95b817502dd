// Package auth implements the mysql_native_password authentication scheme
// used to answer a backend's handshake challenge.
package auth

import (
	"crypto"
	"crypto/sha1"
)

// Available reports whether the SHA-1 primitive NativePassword depends on
// is registered with the crypto package. A caller checks this before
// computing a scramble so a missing hash implementation surfaces as a
// typed error at the handshake instead of a panic inside NativePassword.
func Available() bool {
	return crypto.SHA1.Available()
}

// NativePassword computes the mysql_native_password scramble:
//
//	SHA1(password) XOR SHA1(salt || SHA1(SHA1(password)))
//
// An empty password yields an empty response — no scramble is sent, and the
// backend treats the connection as unauthenticated-by-password.
//
// Grounded bit-exact on mariadb.CalcPassword and on
// MySQLResponseHandler#securePasswordAuthentication in original_source.
func NativePassword(password, salt []byte) []byte {
	if len(password) == 0 {
		return nil
	}

	stage1 := sha1.Sum(password)
	stage2 := sha1.Sum(stage1[:])

	h := sha1.New()
	h.Write(salt)
	h.Write(stage2[:])
	scramble := h.Sum(nil)

	for i := range scramble {
		scramble[i] ^= stage1[i]
	}
	return scramble
}
