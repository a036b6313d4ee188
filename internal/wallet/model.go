package wallet

import (
	"fmt"
	"strings"
	"time"
)

// Provider is a supported external wallet.
type Provider string

const (
	ProviderMetaMask      Provider = "MetaMask"
	ProviderWalletConnect Provider = "WalletConnect"
	ProviderCoinbase      Provider = "Coinbase"
	ProviderTrustWallet   Provider = "Trust Wallet"
	ProviderPhantom       Provider = "Phantom"
	ProviderRainbow       Provider = "Rainbow"
	ProviderLedger        Provider = "Ledger"
)

// Providers lists the supported wallets in display order.
var Providers = []Provider{
	ProviderMetaMask,
	ProviderWalletConnect,
	ProviderCoinbase,
	ProviderTrustWallet,
	ProviderPhantom,
	ProviderRainbow,
	ProviderLedger,
}

// ParseProvider matches raw case-insensitively against the supported set.
func ParseProvider(raw string) (Provider, error) {
	name := strings.TrimSpace(raw)
	for _, p := range Providers {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unsupported wallet provider %q", raw)
}

// Wallet is an external wallet connected to an account.
type Wallet struct {
	ID          string
	UserID      string
	Name        string
	Address     string
	Type        Provider
	ChainID     int64
	IsDefault   bool
	IsActive    bool
	ConnectedAt time.Time
}

// ShortAddress abbreviates long addresses as 0x742d...4635.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// Display renders the wallet as "Name •••• last4".
func (w Wallet) Display() string {
	last4 := w.Address
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return fmt.Sprintf("%s •••• %s", w.Name, last4)
}
