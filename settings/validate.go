package settings

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const maxDecimalPlaces = 18

// FieldError describes one invalid setting.
type FieldError struct {
	Field   string      // yaml key of the setting
	Value   interface{} // the rejected value
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidationError bundles every FieldError found by Validate.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return strings.Join(msgs, "; ")
}

type validator struct {
	fields []FieldError
}

func (v *validator) add(field string, value interface{}, format string, args ...interface{}) {
	v.fields = append(v.fields, FieldError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) port(field string, port int) {
	if port <= 0 || port > 65535 {
		v.add(field, port, "port must be between 1 and 65535, got %d", port)
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: v.fields}
}

// Validate checks that s is internally consistent. All problems are
// reported together in a *ValidationError.
func (s Settings) Validate() error {
	v := &validator{}

	v.port("daemon_default_rpc_port", s.DaemonDefaultRPCPort)
	v.port("wallet_service_rpc_port", s.WalletServiceRPCPort)
	v.port("default_cjdns_admin_port", s.DefaultCjdnsAdminPort)
	v.port("default_cjdns_udp_port", s.DefaultCjdnsUDPPort)
	v.port("default_cjdns_beacon_port", s.DefaultCjdnsBeaconPort)
	v.port("default_cjdns_socks5_port", s.DefaultCjdnsSocks5Port)

	if s.WalletFileDefaultExt == "" {
		v.add("wallet_file_default_ext", s.WalletFileDefaultExt, "must not be empty")
	} else if strings.ContainsAny(s.WalletFileDefaultExt, `./\`) {
		v.add("wallet_file_default_ext", s.WalletFileDefaultExt, "must be a bare extension without dots or separators")
	}

	if s.AddressLength <= len(s.AddressPrefix) {
		v.add("address_length", s.AddressLength, "must be longer than the address prefix")
	}
	if s.IntegratedAddressLength <= s.AddressLength {
		v.add("integrated_address_length", s.IntegratedAddressLength, "must be longer than address_length (%d)", s.AddressLength)
	}

	if s.DecimalPlaces < 0 || s.DecimalPlaces > maxDecimalPlaces {
		v.add("decimal_places", s.DecimalPlaces, "must be between 0 and %d", maxDecimalPlaces)
	} else if s.DecimalDivisor != 0 && s.DecimalDivisor != pow10(s.DecimalPlaces) {
		v.add("decimal_divisor", s.DecimalDivisor, "must be 10^decimal_places (%d)", pow10(s.DecimalPlaces))
	}
	if s.DecimalDivisor < 0 {
		v.add("decimal_divisor", s.DecimalDivisor, "must not be negative")
	}

	if s.MinimumFee < 0 {
		v.add("minimum_fee", s.MinimumFee, "must not be negative")
	}
	if s.MinimumSend < 0 {
		v.add("minimum_send", s.MinimumSend, "must not be negative")
	}
	if s.DefaultMixin < 0 {
		v.add("default_mixin", s.DefaultMixin, "must not be negative")
	}

	if !strings.Contains(s.BlockExplorerURL, TxHashPlaceholder) {
		v.add("block_explorer_url", s.BlockExplorerURL, "must contain %s", TxHashPlaceholder)
	}

	for _, node := range s.RemoteNodeListFallback {
		if !ValidNodeAddress(node) {
			v.add("remote_node_list_fallback", node, "%q is not host:port", node)
		}
	}

	return v.err()
}

// ValidNodeAddress reports whether node is a host:port pair with a usable
// port.
func ValidNodeAddress(node string) bool {
	host, port, err := net.SplitHostPort(node)
	if err != nil || host == "" {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p > 0 && p <= 65535
}

func pow10(n int) int64 {
	r := int64(1)
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}
