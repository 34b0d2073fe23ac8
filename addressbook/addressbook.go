// Package addressbook stores the wallet's saved recipients on disk.
//
// The book is a JSON array of entries. When obfuscation is enabled the JSON
// is sealed with XChaCha20-Poly1305 under a key derived from the configured
// obfuscation key, so the file is not readable as plain text. The key ships
// with the application, so this is obfuscation and not protection.
package addressbook

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fedoragold/walletshell/collections"
	"github.com/fedoragold/walletshell/model"
	"github.com/fedoragold/walletshell/validation"
	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealedMagic starts every obfuscated address book file.
var sealedMagic = []byte("FEDAB1\n")

var (
	ErrInvalidName      = errors.New("name cannot be empty")
	ErrInvalidAddress   = errors.New("invalid address")
	ErrInvalidPaymentID = errors.New("invalid payment id")
	ErrDuplicate        = errors.New("address and payment id already in the address book")
	ErrNotFound         = errors.New("address book entry not found")
	ErrNoKey            = errors.New("address book is obfuscated but no key is configured")
)

// Entry is one saved recipient.
type Entry = model.AddressBookEntry

// Options controls how the book is stored and validated.
type Options struct {
	Obfuscate bool
	Key       string                   // obfuscation key, hashed before use
	Format    validation.AddressFormat // address rules for Add and the samples
	Samples   []Entry                  // written to a new book
}

// Book is an address book backed by a file. It is safe for concurrent use.
type Book struct {
	sync.RWMutex
	saveMu  sync.Mutex // serializes Save so snapshots reach the disk in order
	path    string
	opts    Options
	entries []Entry
}

// Open loads the address book at path. A missing file is created with the
// valid sample entries.
func Open(path string, opts Options) (*Book, error) {
	b := &Book{path: path, opts: opts}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		b.entries = b.samples()
		logrus.WithField("path", path).WithField("count", len(b.entries)).Debug("creating address book")
		if err := b.Save(); err != nil {
			return nil, err
		}
		return b, nil
	}
	if err != nil {
		logrus.Debug("error reading address book")
		return nil, err
	}

	entries, err := b.decode(data)
	if err != nil {
		return nil, fmt.Errorf("load address book %s: %w", path, err)
	}
	b.entries = entries
	return b, nil
}

func (b *Book) samples() []Entry {
	out := make([]Entry, 0, len(b.opts.Samples))
	for _, s := range b.opts.Samples {
		if b.check(s.Name, s.Address, s.PaymentID) != nil || collections.ContainsBy(out, s, Entry.Key) {
			logrus.WithField("name", s.Name).Debug("skipping invalid sample entry")
			continue
		}
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = time.Now().UTC()
		}
		out = append(out, s)
	}
	return out
}

func (b *Book) check(name, address, paymentID string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if !b.opts.Format.ValidAddress(address) {
		return ErrInvalidAddress
	}
	if !validation.ValidatePaymentID(paymentID) {
		return ErrInvalidPaymentID
	}
	// integrated addresses already carry a payment id
	if paymentID != "" && b.opts.Format.IsIntegrated(address) {
		return ErrInvalidPaymentID
	}
	return nil
}

// Add validates and appends a new entry.
func (b *Book) Add(name, address, paymentID string) (Entry, error) {
	name = strings.TrimSpace(name)
	address = strings.TrimSpace(address)
	paymentID = strings.TrimSpace(paymentID)
	if err := b.check(name, address, paymentID); err != nil {
		return Entry{}, err
	}
	e := Entry{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   address,
		PaymentID: paymentID,
		CreatedAt: time.Now().UTC(),
	}

	b.Lock()
	defer b.Unlock()
	if collections.ContainsBy(b.entries, e, Entry.Key) {
		return Entry{}, ErrDuplicate
	}
	b.entries = append(b.entries, e)
	return e, nil
}

// Remove deletes the entry with the given id.
func (b *Book) Remove(id string) error {
	b.Lock()
	defer b.Unlock()
	for i, e := range b.entries {
		if e.ID == id {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// List returns the entries sorted by name.
func (b *Book) List() []Entry {
	b.RLock()
	out := append([]Entry(nil), b.entries...)
	b.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Find returns the entries saved for address.
func (b *Book) Find(address string) []Entry {
	b.RLock()
	defer b.RUnlock()
	var out []Entry
	for _, e := range b.entries {
		if e.Address == address {
			out = append(out, e)
		}
	}
	return out
}

// Save atomically replaces the file with the current entries.
func (b *Book) Save() error {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	b.RLock()
	data, err := b.encode(b.entries)
	b.RUnlock()
	if err != nil {
		return err
	}

	pendingFile, err := renameio.NewPendingFile(b.path, renameio.WithPermissions(0o600))
	if err != nil {
		return fmt.Errorf("create pending address book: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logrus.WithError(err).Debug("error cleaning up pending address book")
		}
	}()
	if _, err := pendingFile.Write(data); err != nil {
		return fmt.Errorf("write address book: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace address book: %w", err)
	}
	return nil
}

func (b *Book) encode(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	if !b.opts.Obfuscate {
		return data, nil
	}
	return seal(b.opts.Key, data)
}

func (b *Book) decode(data []byte) ([]Entry, error) {
	if bytes.HasPrefix(data, sealedMagic) {
		if b.opts.Key == "" {
			return nil, ErrNoKey
		}
		plain, err := open(b.opts.Key, data)
		if err != nil {
			return nil, err
		}
		data = plain
	}
	var entries []Entry
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func seal(key string, plain []byte) ([]byte, error) {
	k := blake2s.Sum256([]byte(key))
	aead, err := chacha20poly1305.NewX(k[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(sealedMagic)+aead.NonceSize(), len(sealedMagic)+aead.NonceSize()+len(plain)+aead.Overhead())
	copy(out, sealedMagic)
	nonce := out[len(sealedMagic):]
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(out, nonce, plain, sealedMagic), nil
}

func open(key string, sealed []byte) ([]byte, error) {
	k := blake2s.Sum256([]byte(key))
	aead, err := chacha20poly1305.NewX(k[:])
	if err != nil {
		return nil, err
	}
	body := sealed[len(sealedMagic):]
	if len(body) < aead.NonceSize()+aead.Overhead() {
		return nil, errors.New("sealed address book is truncated")
	}
	nonce, ciphertext := body[:aead.NonceSize()], body[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, sealedMagic)
	if err != nil {
		return nil, fmt.Errorf("open sealed address book: %w", err)
	}
	return plain, nil
}
