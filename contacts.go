package mintr

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Contacts resolves address-book labels.
type Contacts interface {
	GetContact(label string) (Contact, error)
}

// IsLabel reports whether s looks like an address-book label rather than an address.
func IsLabel(s string) bool {
	if len(s) < 3 || len(s) > 20 {
		return false
	}
	for _, c := range s {
		if !((c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}

// ResolveRecipient turns a base58 address or a contact label into an owner key.
func ResolveRecipient(book Contacts, s string) (solana.PublicKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return solana.PublicKey{}, invalid("recipient", "required")
	}
	if pk, err := solana.PublicKeyFromBase58(s); err == nil {
		return pk, nil
	}

	label := strings.ToLower(s)
	if !IsLabel(label) {
		return solana.PublicKey{}, invalid("recipient", "malformed address %q", s)
	}
	if book == nil {
		return solana.PublicKey{}, invalid("recipient", "unknown contact %q", label)
	}
	c, err := book.GetContact(label)
	if errors.Is(err, sql.ErrNoRows) {
		return solana.PublicKey{}, invalid("recipient", "unknown contact %q", label)
	}
	if err != nil {
		return solana.PublicKey{}, err
	}
	return ParseAddress("recipient", c.Owner)
}

func AddContact(s *Store, label, owner string) error {
	label = strings.ToLower(strings.TrimSpace(label))
	if !IsLabel(label) {
		return invalid("label", "use 3-20 lowercase letters, digits or _")
	}
	pk, err := ParseAddress("address", owner)
	if err != nil {
		return err
	}
	return s.SaveContact(Contact{Label: label, Owner: pk.String()})
}
