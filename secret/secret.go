// Package secret contains secrets to use in the application,
// e.g. the password of the redis server.
//
// Its purpose is to easily deal with sensitive data
// you want to keep from accidentally being exposed.
package secret

import (
	"encoding/json"
	"log/slog"
)

func New(secret string) Secret {
	return Secret{secret: &secret}
}

// Secret prevents accidentally exposing
// any data you did not want to expose by masking it.
type Secret struct {
	// secret being a pointer does make it harder to access the value.
	// It is still possible by directly accessing the memory address.
	secret *string
}

const mask = "******"

// Secret returns the actual value of the Secret.
func (s Secret) Secret() string {
	if s.secret == nil {
		return ""
	}

	return *s.secret
}

// IsEmpty reports whether no secret or an empty one is set.
func (s Secret) IsEmpty() bool {
	return s.Secret() == ""
}

func (s Secret) String() string {
	return mask
}

func (s Secret) LogValue() slog.Value {
	return slog.StringValue(mask)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String()) //nolint:wrapcheck // export the underlying error
}

func (s *Secret) UnmarshalJSON(data []byte) error {
	var des string
	if err := json.Unmarshal(data, &des); err != nil {
		return err //nolint:wrapcheck // export the underlying error
	}

	s.secret = &des

	return nil
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText is used by the configuration to decode the secret from e.g. an environment variable.
func (s *Secret) UnmarshalText(data []byte) error {
	text := string(data)
	s.secret = &text

	return nil
}
