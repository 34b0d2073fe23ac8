// Package settings defines the wallet shell configuration: network ports,
// address format, fee defaults, amount scaling, the block explorer link and
// the remote nodes to fall back on.
//
// A Settings value is built once from the compiled-in defaults, optionally
// overlaid with a YAML document, and is never mutated afterwards. Callers
// that need to change a field work on a Clone.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fedoragold/walletshell/amount"
	"github.com/fedoragold/walletshell/model"
	"github.com/fedoragold/walletshell/validation"
	"gopkg.in/yaml.v3"
)

// TxHashPlaceholder is replaced by a transaction hash in BlockExplorerURL.
const TxHashPlaceholder = "[[TX_HASH]]"

// Settings is the wallet shell configuration.
type Settings struct {
	AppName        string `yaml:"app_name"`
	AppDescription string `yaml:"app_description"`
	AppSlogan      string `yaml:"app_slogan"`
	AppID          string `yaml:"app_id"`
	AppGitRepo     string `yaml:"app_git_repo"`

	// Port of the daemon RPC when the shell starts its own daemon.
	DaemonDefaultRPCPort int `yaml:"daemon_default_rpc_port"`

	WalletFileDefaultExt        string `yaml:"wallet_file_default_ext"`
	WalletServiceBinaryFilename string `yaml:"wallet_service_binary_filename"`
	DaemonBinaryFilename        string `yaml:"daemon_binary_filename"`
	WalletServiceBinaryVersion  string `yaml:"wallet_service_binary_version"`
	WalletServiceRPCPort        int    `yaml:"wallet_service_rpc_port"`

	DefaultCjdnsAdminPort  int `yaml:"default_cjdns_admin_port"`
	DefaultCjdnsUDPPort    int `yaml:"default_cjdns_udp_port"`
	DefaultCjdnsBeaconPort int `yaml:"default_cjdns_beacon_port"`
	DefaultCjdnsSocks5Port int `yaml:"default_cjdns_socks5_port"`

	BlockExplorerURL string `yaml:"block_explorer_url"`

	RemoteNodeDefaultHost   string   `yaml:"remote_node_default_host"`
	RemoteNodeListUpdateURL string   `yaml:"remote_node_list_update_url"`
	RemoteNodeListFallback  []string `yaml:"remote_node_list_fallback"`

	AssetName               string `yaml:"asset_name"`
	AssetTicker             string `yaml:"asset_ticker"`
	AddressPrefix           string `yaml:"address_prefix"`
	AddressLength           int    `yaml:"address_length"`
	IntegratedAddressLength int    `yaml:"integrated_address_length"`

	MinimumFee     float64 `yaml:"minimum_fee"`
	MinimumSend    float64 `yaml:"minimum_send"`
	DefaultMixin   int     `yaml:"default_mixin"`
	DecimalDivisor int64   `yaml:"decimal_divisor"`
	DecimalPlaces  int     `yaml:"decimal_places"`

	// The obfuscation key ships with the application, so this only keeps the
	// address book from being plain text on disk.
	AddressBookObfuscateEntries bool                     `yaml:"address_book_obfuscate_entries"`
	AddressBookObfuscationKey   string                   `yaml:"address_book_obfuscation_key"`
	AddressBookSampleEntries    []model.AddressBookEntry `yaml:"address_book_sample_entries,omitempty"`
}

// Default returns the built-in FedoraGold settings.
func Default() Settings {
	return Settings{
		AppName:        "FedoraGoldWallet",
		AppDescription: "FedoraGold (FED) Wallet",
		AppSlogan:      "Welcome to The FED.",
		AppID:          "fed.fedoragold.walletshell",
		AppGitRepo:     "https://github.com/jojapoppa/fedoragold-wallet-electron",

		DaemonDefaultRPCPort: 31875,

		WalletFileDefaultExt:        "wal",
		WalletServiceBinaryFilename: "fedoragold_walletd",
		DaemonBinaryFilename:        "fedoragold_daemon",
		WalletServiceBinaryVersion:  "v0.10.0",
		WalletServiceRPCPort:        31876,

		DefaultCjdnsAdminPort:  11234,
		DefaultCjdnsUDPPort:    49869,
		DefaultCjdnsBeaconPort: 64512,
		DefaultCjdnsSocks5Port: 1080,

		BlockExplorerURL: "https://explorer.fedoragold.com/?hash=" + TxHashPlaceholder + "#transaction",

		RemoteNodeDefaultHost: "127.0.0.1",
		RemoteNodeListFallback: []string{
			"202.182.106.252:30158",
			"213.136.89.252:30158",
		},

		AssetName:               "FedoraGold",
		AssetTicker:             "FED",
		AddressPrefix:           validation.DefaultFormat.Prefix,
		AddressLength:           validation.DefaultAddressLength,
		IntegratedAddressLength: validation.DefaultIntegratedAddressLength,

		MinimumFee:     0.1,
		MinimumSend:    0.11,
		DefaultMixin:   22,
		DecimalDivisor: amount.DefaultDivisor,
		DecimalPlaces:  amount.DefaultPlaces,

		AddressBookObfuscateEntries: true,
		AddressBookObfuscationKey:   "79009fb00ca1b7130832a42de45142cf6c4b7f333fe6fba5",
	}
}

// Parse overlays the YAML document raw on the defaults. Keys missing from
// the document keep their default value. An empty document yields the
// defaults.
func Parse(raw []byte) (Settings, error) {
	s := Default()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return s, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Tag == "!!null" {
		return s, nil
	}
	if node.Content[0].Kind != yaml.MappingNode {
		return Settings{}, errors.New("parse settings: document is not a mapping")
	}
	if err := node.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Marshal renders s as a YAML document accepted by Parse.
func (s Settings) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}

// Clone returns a deep copy of s.
func (s Settings) Clone() Settings {
	c := s
	if s.RemoteNodeListFallback != nil {
		c.RemoteNodeListFallback = append([]string(nil), s.RemoteNodeListFallback...)
	}
	if s.AddressBookSampleEntries != nil {
		c.AddressBookSampleEntries = append([]model.AddressBookEntry(nil), s.AddressBookSampleEntries...)
	}
	return c
}

// TxExplorerURL returns the block explorer link for a transaction hash.
func (s Settings) TxExplorerURL(hash string) string {
	return strings.ReplaceAll(s.BlockExplorerURL, TxHashPlaceholder, hash)
}

// AddressFormat returns the address rules described by s.
func (s Settings) AddressFormat() validation.AddressFormat {
	return validation.AddressFormat{
		Prefix:           s.AddressPrefix,
		Length:           s.AddressLength,
		IntegratedLength: s.IntegratedAddressLength,
	}
}

// Denomination returns the amount converter described by s.
func (s Settings) Denomination() amount.Converter {
	return amount.Converter{Divisor: s.DecimalDivisor, Places: s.DecimalPlaces}
}
