package model

import "time"

// AddressBookEntry is a single saved recipient in the wallet address book.
// It contains a display name, the destination address and an optional
// payment id that is attached to transfers sent to that address.
type AddressBookEntry struct {
	ID        string    `json:"id" yaml:"id"`                                     // Unique identifier of the entry.
	Name      string    `json:"name" yaml:"name"`                                 // Display name chosen by the user.
	Address   string    `json:"address" yaml:"address"`                           // Standard or integrated wallet address.
	PaymentID string    `json:"payment_id,omitempty" yaml:"payment_id,omitempty"` // Optional 64 character payment id.
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`           // Time the entry was added.
}

// Key identifies the destination of an entry. Two entries with the same key
// send funds to the same place.
func (e AddressBookEntry) Key() string {
	if e.PaymentID == "" {
		return e.Address
	}
	return e.Address + "." + e.PaymentID
}
