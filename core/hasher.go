package core

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a salted bcrypt digest from password. The salt is
// randomized per call, so hashing the same password twice yields different
// digests that both verify.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored digest. bcrypt
// compares in constant time; a malformed or foreign digest simply fails
// verification rather than surfacing a distinct error.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
