package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fedoragold/walletshell/addressbook"
	"github.com/fedoragold/walletshell/amount"
	"github.com/fedoragold/walletshell/checksum"
	"github.com/fedoragold/walletshell/qr"
	"github.com/fedoragold/walletshell/validation"
	"github.com/fedoragold/walletshell/walletfile"
	"github.com/sirupsen/logrus"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	if err := s.Client.LastError(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready reports whether at least one remote node is known. The local
// default host does not count.
func (s *Server) ready(w http.ResponseWriter, _ *http.Request) {
	if len(s.Nodes.Nodes()) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no nodes"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) settings(w http.ResponseWriter, _ *http.Request) {
	data, err := s.Client.Settings().Marshal()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(data); err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func (s *Server) nodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Nodes.Candidates())
}

func (s *Server) qr(w http.ResponseWriter, r *http.Request) {
	data := r.URL.Query().Get("data")
	if data == "" {
		writeError(w, http.StatusBadRequest, errors.New("data is required"))
		return
	}
	size := qr.DefaultSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 2048 {
			writeError(w, http.StatusBadRequest, errors.New("size must be between 1 and 2048"))
			return
		}
		size = n
	}
	png, err := qr.PNG(data, size)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		logrus.WithError(err).Error("error writing response")
	}
}

func (s *Server) hash(w http.ResponseWriter, r *http.Request) {
	sum, ok := checksum.B2SSum(r.URL.Query().Get("value"))
	if !ok {
		writeError(w, http.StatusBadRequest, errors.New("value is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"hash": sum})
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	value := r.URL.Query().Get("value")
	var valid bool
	switch r.PathValue("kind") {
	case "address":
		valid = s.Client.Settings().AddressFormat().ValidAddress(value)
	case "payment-id":
		valid = validation.ValidatePaymentID(value)
	case "secret-key":
		valid = validation.ValidateSecretKey(value)
	case "mnemonic":
		valid = validation.ValidateMnemonic(value)
	default:
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
}

func (s *Server) amountMortal(w http.ResponseWriter, r *http.Request) {
	atomic, err := strconv.ParseInt(r.URL.Query().Get("atomic"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, amount.ErrInvalidAmount)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"amount": s.Client.Settings().Denomination().ForMortal(atomic)})
}

func (s *Server) amountImmortal(w http.ResponseWriter, r *http.Request) {
	atomic, err := s.Client.Settings().Denomination().ForImmortal(r.URL.Query().Get("value"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"atomic": atomic})
}

func (s *Server) explorer(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("hash")
	if hash == "" {
		writeError(w, http.StatusBadRequest, errors.New("hash is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": s.Client.Settings().TxExplorerURL(hash)})
}

type walletPathRequest struct {
	Path       string `json:"path"`
	DefaultDir string `json:"default_dir"`
	Existing   bool   `json:"existing"`
}

func (s *Server) walletPath(w http.ResponseWriter, r *http.Request) {
	var req walletPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ext := s.Client.Settings().WalletFileDefaultExt
	path, err := walletfile.ValidatePath(r.Context(), req.Path, req.DefaultDir, req.Existing, ext)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (s *Server) listEntries(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Book.List())
}

type entryRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	PaymentID string `json:"payment_id"`
}

func (s *Server) addEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := s.Book.Add(req.Name, req.Address, req.PaymentID)
	switch {
	case errors.Is(err, addressbook.ErrDuplicate):
		writeError(w, http.StatusConflict, err)
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Book.Save(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) removeEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.Book.Remove(r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err := s.Book.Save(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
