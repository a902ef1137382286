package identity

import "golang.org/x/crypto/bcrypt"

// Authenticator is the opaque credential capability: it hashes passwords at
// registration and verifies them at login.
type Authenticator interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) error
}

type BcryptAuthenticator struct {
	Cost int
}

func NewBcryptAuthenticator() BcryptAuthenticator {
	return BcryptAuthenticator{Cost: 12}
}

func (a BcryptAuthenticator) Hash(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), a.Cost)
}

func (a BcryptAuthenticator) Verify(password string, hash []byte) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(password))
}
