package identity

import (
	"fmt"
	"unicode"

	"github.com/qchem/gausscat/internal/conf"
	"golang.org/x/crypto/bcrypt"
)

// CheckPolicy returns one message per rule the password breaks.
func CheckPolicy(policy conf.PasswordPolicy, password string) []string {
	var (
		msgs                         []string
		hasDigit, hasLower, hasUpper bool
		hasOther                     bool
		length                       int
	)
	for _, r := range password {
		length++
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasOther = true
		}
	}

	if length < policy.RequiredLength {
		msgs = append(msgs, fmt.Sprintf("Passwords must be at least %d characters.", policy.RequiredLength))
	}
	if policy.RequireNonAlphanumeric && !hasOther {
		msgs = append(msgs, "Passwords must have at least one non alphanumeric character.")
	}
	if policy.RequireDigit && !hasDigit {
		msgs = append(msgs, "Passwords must have at least one digit ('0'-'9').")
	}
	if policy.RequireLowercase && !hasLower {
		msgs = append(msgs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if policy.RequireUppercase && !hasUpper {
		msgs = append(msgs, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return msgs
}

// hasher wraps bcrypt with a configurable cost.
type hasher struct {
	cost int
}

func (h hasher) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h hasher) verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
