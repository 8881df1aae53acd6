// Package keys holds the key namespace for everything this backend stores in
// Redis. Every store-backed component builds its keys here so the prefixes
// can never collide.
package keys

import "fmt"

const (
	// JWTBlacklist holds revoked token ids until their natural expiry
	JWTBlacklist = "jwt:blacklist:"

	// VerifyEmailLimit throttles verification code requests per requester
	VerifyEmailLimit = "verify:email:limit:"

	// VerifyEmailData holds the active code per (kind, email) pair
	VerifyEmailData = "verify:email:data:"

	// MailQueue is the list the mail consumer blocks on
	MailQueue = "queue:mail"

	// MailDeadLetter receives jobs the consumer could not process
	MailDeadLetter = "queue:mail:dead"
)

// BlacklistKey builds the blacklist key for a token id
func BlacklistKey(jti string) string {
	return JWTBlacklist + jti
}

// EmailLimitKey builds the rate limit key for a requester discriminator
// (usually the client IP)
func EmailLimitKey(discriminator string) string {
	return VerifyEmailLimit + discriminator
}

// EmailDataKey builds the verification code key for a (kind, email) pair
func EmailDataKey(kind, email string) string {
	return fmt.Sprintf("%s%s:%s", VerifyEmailData, kind, email)
}
