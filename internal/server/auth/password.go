package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the account does not exist, so a
// lookup miss costs the same as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("docblog-dummy-password"), bcrypt.DefaultCost)

// HashPassword returns the bcrypt hash of password at the given cost.
// Out-of-range costs fall back to bcrypt.DefaultCost.
func HashPassword(password []byte, cost int) ([]byte, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return bcrypt.GenerateFromPassword(password, cost)
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}

// BurnCompare runs a throwaway comparison.
func BurnCompare(password []byte) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, password)
}
