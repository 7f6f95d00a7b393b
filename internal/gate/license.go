package gate

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// License is the activation material presented to Init.
type License struct {
	FirstName string `toml:"first_name" yaml:"first_name"`
	LastName  string `toml:"last_name" yaml:"last_name"`
	Email     string `toml:"email" yaml:"email"`
	Key       uint32 `toml:"key" yaml:"key"`
}

// Sign returns a License whose key matches the given identity.
func Sign(first, last, email string) License {
	return License{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Key:       keyFor(first, last, email),
	}
}

// Valid reports whether the key matches the identity fields.
// An email is required; names may be empty.
func (l License) Valid() bool {
	if strings.TrimSpace(l.Email) == "" {
		return false
	}
	return l.Key == keyFor(l.FirstName, l.LastName, l.Email)
}

// keyFor folds the 64-bit digest of the normalized identity into 32 bits.
func keyFor(first, last, email string) uint32 {
	d := xxhash.New()
	for _, s := range []string{first, last, strings.ToLower(email)} {
		d.WriteString(strings.TrimSpace(s))
		d.Write([]byte{0})
	}
	sum := d.Sum64()
	return uint32(sum>>32) ^ uint32(sum)
}
