// Package validation holds the input predicates used by the wallet shell
// before anything is handed to the wallet service: addresses, payment ids,
// secret keys and mnemonic seeds.
package validation

import (
	"regexp"
	"strings"
)

const (
	// DefaultAddressLength is the length of a standard FED address.
	DefaultAddressLength = 95
	// DefaultIntegratedAddressLength is the length of an address with an
	// embedded payment id.
	DefaultIntegratedAddressLength = 187

	// MnemonicWordCount is the number of words in a wallet seed.
	MnemonicWordCount = 25

	keyLength = 64
)

var (
	alphanumericRegex = regexp.MustCompile(`^[a-zA-Z0-9]*$`)
	paymentIDRegex    = regexp.MustCompile(`^[a-zA-Z0-9]{64}$`)
	secretKeyRegex    = regexp.MustCompile(`^[a-zA-Z0-9]{64}$`)
	mnemonicRegex     = regexp.MustCompile(`^[a-zA-Z]+[a-zA-Z0-9 ]*$`)
)

// AddressFormat describes what a wallet address looks like on the network.
type AddressFormat struct {
	Prefix           string // Leading characters every address starts with, may be empty.
	Length           int    // Length of a standard address, prefix included.
	IntegratedLength int    // Length of an integrated address, prefix included.
}

// DefaultFormat is the FED mainnet address format.
var DefaultFormat = AddressFormat{
	Length:           DefaultAddressLength,
	IntegratedLength: DefaultIntegratedAddressLength,
}

// ValidAddress reports whether address is a standard or integrated address
// of this format.
func (f AddressFormat) ValidAddress(address string) bool {
	if !strings.HasPrefix(address, f.Prefix) {
		return false
	}
	if len(address) != f.Length && len(address) != f.IntegratedLength {
		return false
	}
	return alphanumericRegex.MatchString(address)
}

// IsIntegrated reports whether address is a valid integrated address.
func (f AddressFormat) IsIntegrated(address string) bool {
	return f.ValidAddress(address) && len(address) == f.IntegratedLength && f.IntegratedLength != f.Length
}

// ValidateAddress checks address against DefaultFormat.
func ValidateAddress(address string) bool {
	return DefaultFormat.ValidAddress(address)
}

// ValidatePaymentID accepts an empty payment id, or exactly 64 alphanumerics.
func ValidatePaymentID(paymentID string) bool {
	if paymentID == "" {
		return true
	}
	return paymentIDRegex.MatchString(paymentID)
}

// ValidateSecretKey accepts exactly 64 alphanumerics.
func ValidateSecretKey(key string) bool {
	return len(key) == keyLength && secretKeyRegex.MatchString(key)
}

// ValidateMnemonic accepts a seed of exactly 25 words separated by single
// spaces. The seed must start with a letter.
func ValidateMnemonic(seed string) bool {
	if seed == "" {
		return false
	}
	if !mnemonicRegex.MatchString(seed) || strings.Contains(seed, "  ") {
		return false
	}
	return len(strings.Split(seed, " ")) == MnemonicWordCount
}
