package utils

import "golang.org/x/crypto/bcrypt"

const BcryptCost = 10

// HashCode hashes a verification code before it is stored. The plaintext
// only ever travels over the delivery channel.
func HashCode(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckCode(hashedCode string, code string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(code))
	return err == nil
}
