package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/plexlink/plexlink/utils"
)

// Alias validation error constants
var (
	ErrAliasBadCharset = errors.New("alias contains disallowed characters")
	ErrAliasBadLength  = errors.New("alias length out of range")
	ErrAliasReserved   = errors.New("alias is reserved")
)

// AliasService generates random aliases and validates custom ones. Random
// aliases draw from an alphabet with the ambiguous glyphs (0/O, 1/l/I)
// removed; custom aliases accept the wider URL-safe charset.
type AliasService interface {
	Generate() (string, error)
	Validate(alias string) error
}

// AliasServiceImpl implements AliasService
type AliasServiceImpl struct {
	alphabet string
	length   int
	reserved map[string]struct{}
}

// NewAliasService creates a new alias service. Empty alphabet or
// non-positive length fall back to the defaults; reserved words are
// matched case-insensitively.
func NewAliasService(alphabet string, length int, reservedWords []string) AliasService {
	if alphabet == "" {
		alphabet = utils.DefaultAliasAlphabet
	}
	if length <= 0 {
		length = utils.DefaultAliasLength
	}
	reserved := make(map[string]struct{}, len(reservedWords))
	for _, w := range reservedWords {
		reserved[strings.ToLower(w)] = struct{}{}
	}
	return &AliasServiceImpl{
		alphabet: alphabet,
		length:   length,
		reserved: reserved,
	}
}

// Generate returns a random alias. Collisions with existing aliases are
// not checked here; the caller retries on a duplicate-key insert.
func (s *AliasServiceImpl) Generate() (string, error) {
	max := big.NewInt(int64(len(s.alphabet)))
	var b strings.Builder
	b.Grow(s.length)
	for i := 0; i < s.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate alias: %w", err)
		}
		b.WriteByte(s.alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Validate checks a custom alias: 1..MaxAliasLength characters from the
// URL-safe set, and not a reserved word.
func (s *AliasServiceImpl) Validate(alias string) error {
	if len(alias) == 0 || len(alias) > utils.MaxAliasLength {
		return ErrAliasBadLength
	}
	for i := 0; i < len(alias); i++ {
		if !isAliasChar(alias[i]) {
			return ErrAliasBadCharset
		}
	}
	if _, ok := s.reserved[strings.ToLower(alias)]; ok {
		return ErrAliasReserved
	}
	return nil
}

// isAliasChar reports whether c is allowed in a custom alias: ASCII
// letters, digits, and the unreserved URL punctuation - _ . ~
func isAliasChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}
