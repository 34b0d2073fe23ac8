package addressbook

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fedoragold/walletshell/validation"
)

var (
	addressA   = strings.Repeat("a", validation.DefaultAddressLength)
	addressB   = strings.Repeat("b", validation.DefaultAddressLength)
	integrated = strings.Repeat("c", validation.DefaultIntegratedAddressLength)
	paymentID  = strings.Repeat("0", 64)
)

func testOptions(obfuscate bool) Options {
	return Options{
		Obfuscate: obfuscate,
		Key:       "79009fb00ca1b7130832a42de45142cf6c4b7f333fe6fba5",
		Format:    validation.DefaultFormat,
		Samples: []Entry{
			{Name: "Donations", Address: addressA},
			{Name: "Broken", Address: "short"},
		},
	}
}

func TestOpenSeedsSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abook.json")
	book, err := Open(path, testOptions(false))
	if err != nil {
		t.Fatalf("Error opening address book: %s", err.Error())
	}
	entries := book.List()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 sample entry, got %d", len(entries))
	}
	if entries[0].ID == "" || entries[0].CreatedAt.IsZero() {
		t.Errorf("Expected sample to get an id and a creation time, got %+v", entries[0])
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected address book file to be created, got %v", err)
	}
}

func TestAdd(t *testing.T) {
	book, err := Open(filepath.Join(t.TempDir(), "abook.json"), testOptions(false))
	if err != nil {
		t.Fatal(err)
	}

	e, err := book.Add(" Alice ", addressB, paymentID)
	if err != nil {
		t.Fatalf("Error adding entry: %s", err.Error())
	}
	if e.Name != "Alice" {
		t.Errorf("Expected trimmed name Alice, got %q", e.Name)
	}
	if _, err := book.Add("Alice again", addressB, paymentID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
	if _, err := book.Add("Alice plain", addressB, ""); err != nil {
		t.Errorf("Expected the same address without payment id to be accepted, got %v", err)
	}

	tests := []struct {
		name, address, paymentID string
		want                     error
	}{
		{"", addressB, "", ErrInvalidName},
		{"Bob", "short", "", ErrInvalidAddress},
		{"Bob", addressB, "xyz", ErrInvalidPaymentID},
		{"Bob", integrated, paymentID, ErrInvalidPaymentID},
	}
	for _, tt := range tests {
		if _, err := book.Add(tt.name, tt.address, tt.paymentID); !errors.Is(err, tt.want) {
			t.Errorf("Add(%q, %q, %q): expected %v, got %v", tt.name, tt.address, tt.paymentID, tt.want, err)
		}
	}
	if _, err := book.Add("Carol", integrated, ""); err != nil {
		t.Errorf("Expected integrated address to be accepted, got %v", err)
	}

	names := []string{}
	for _, e := range book.List() {
		names = append(names, e.Name)
	}
	if strings.Join(names, ",") != "Alice,Alice plain,Carol,Donations" {
		t.Errorf("Expected entries sorted by name, got %v", names)
	}
	if got := book.Find(addressB); len(got) != 2 {
		t.Errorf("Expected 2 entries for address B, got %d", len(got))
	}
}

func TestRemove(t *testing.T) {
	book, err := Open(filepath.Join(t.TempDir(), "abook.json"), testOptions(false))
	if err != nil {
		t.Fatal(err)
	}
	e, err := book.Add("Alice", addressB, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := book.Remove(e.ID); err != nil {
		t.Errorf("Error removing entry: %s", err.Error())
	}
	if err := book.Remove(e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if got := book.Find(addressB); len(got) != 0 {
		t.Errorf("Expected entry to be gone, got %v", got)
	}
}

func TestSaveAndReopen(t *testing.T) {
	for _, obfuscate := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "abook.json")
		book, err := Open(path, testOptions(obfuscate))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := book.Add("Alice", addressB, paymentID); err != nil {
			t.Fatal(err)
		}
		if err := book.Save(); err != nil {
			t.Fatalf("Error saving: %s", err.Error())
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if sealed := bytes.HasPrefix(raw, sealedMagic); sealed != obfuscate {
			t.Errorf("Expected sealed=%t, got %t", obfuscate, sealed)
		}
		if obfuscate && bytes.Contains(raw, []byte(addressB)) {
			t.Errorf("Expected sealed file not to contain the address in plain text")
		}

		reopened, err := Open(path, testOptions(obfuscate))
		if err != nil {
			t.Fatalf("Error reopening: %s", err.Error())
		}
		if len(reopened.List()) != 2 {
			t.Errorf("Expected 2 entries after reopening, got %d", len(reopened.List()))
		}
		if got := reopened.Find(addressB); len(got) != 1 || got[0].PaymentID != paymentID {
			t.Errorf("Expected Alice with payment id, got %+v", got)
		}
	}
}

func TestOpenSealedWithWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abook.json")
	if _, err := Open(path, testOptions(true)); err != nil {
		t.Fatal(err)
	}

	opts := testOptions(true)
	opts.Key = "another key"
	if _, err := Open(path, opts); err == nil {
		t.Error("Expected error opening with the wrong key")
	}
	opts.Key = ""
	if _, err := Open(path, opts); !errors.Is(err, ErrNoKey) {
		t.Errorf("Expected ErrNoKey, got %v", err)
	}

	// a plain book is still readable after obfuscation is switched on
	plain := filepath.Join(t.TempDir(), "plain.json")
	if _, err := Open(plain, testOptions(false)); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(plain, testOptions(true)); err != nil {
		t.Errorf("Expected plain book to open with obfuscation on, got %v", err)
	}
}

func TestConcurrentAdd(t *testing.T) {
	book, err := Open(filepath.Join(t.TempDir(), "abook.json"), testOptions(false))
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = book.Add("Same", addressB, "")
			_ = book.List()
		}()
	}
	wg.Wait()
	if got := book.Find(addressB); len(got) != 1 {
		t.Errorf("Expected exactly one entry to win, got %d", len(got))
	}
}

func TestConcurrentAddAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abook.json")
	book, err := Open(path, testOptions(true))
	if err != nil {
		t.Fatal(err)
	}

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			address := fmt.Sprintf("%02d%s", i, strings.Repeat("d", validation.DefaultAddressLength-2))
			if _, err := book.Add(fmt.Sprintf("Writer %02d", i), address, ""); err != nil {
				errs <- err
				return
			}
			errs <- book.Save()
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Error adding and saving: %s", err.Error())
		}
	}

	reopened, err := Open(path, testOptions(true))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(reopened.List()), len(book.List()); got != want {
		t.Errorf("Expected %d entries on disk, got %d", want, got)
	}
	if len(book.List()) != writers+1 {
		t.Errorf("Expected %d entries in memory, got %d", writers+1, len(book.List()))
	}
}
