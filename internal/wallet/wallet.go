package wallet

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"enenni_wallet_back/models"
)

var (
	ErrEmptyAddress    = errors.New("address is empty")
	ErrInvalidAddress  = errors.New("invalid address format")
	ErrInvalidChecksum = errors.New("address checksum mismatch")
)

const bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// ValidateAddress checks that address is well formed for the chain the currency settles on.
func ValidateAddress(currency models.Currency, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrEmptyAddress
	}
	switch {
	case currency.EVM():
		return validateEVMAddress(address)
	case currency == models.CurrencyBTC:
		return validateBitcoinAddress(address)
	}
	return fmt.Errorf("unsupported currency %q", currency)
}

// ValidateChainAddress is ValidateAddress for a wallet that names its chain. Stablecoins held on
// TRON use TRON base58check addresses instead of EVM ones.
func ValidateChainAddress(chain string, currency models.Currency, address string) error {
	if isTron(chain) && (currency == models.CurrencyUSDT || currency == models.CurrencyUSDC) {
		address = strings.TrimSpace(address)
		if address == "" {
			return ErrEmptyAddress
		}
		if !strings.HasPrefix(address, "T") {
			return ErrInvalidAddress
		}
		return validateBase58Check(address, tronVersion)
	}
	return ValidateAddress(currency, address)
}

// tronVersion prefixes the 20 byte account id of every TRON mainnet address.
const tronVersion = 0x41

func isTron(chain string) bool {
	switch strings.ToLower(strings.TrimSpace(chain)) {
	case "tron", "trc20", "trx":
		return true
	}
	return false
}

// validateEVMAddress accepts all-lower and all-upper hex; mixed case must carry a valid EIP-55 checksum.
func validateEVMAddress(address string) error {
	if !common.IsHexAddress(address) || !strings.HasPrefix(address, "0x") {
		return ErrInvalidAddress
	}
	body := address[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if common.HexToAddress(address).Hex() != address {
		return ErrInvalidChecksum
	}
	return nil
}

func validateBitcoinAddress(address string) error {
	lower := strings.ToLower(address)
	if strings.HasPrefix(lower, "bc1") {
		return validateBech32Shape(address)
	}
	return validateBase58Check(address, 0x00, 0x05)
}

// validateBase58Check decodes a version+payload+checksum address (double SHA256 checksum).
func validateBase58Check(address string, versions ...byte) error {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != 25 {
		return ErrInvalidAddress
	}
	payload, sum := decoded[:21], decoded[21:]

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	if !bytes.Equal(second[:4], sum) {
		return ErrInvalidChecksum
	}
	for _, v := range versions {
		if payload[0] == v {
			return nil
		}
	}
	return ErrInvalidAddress
}

// validateBech32Shape checks case, length and charset of a segwit address. The polymod checksum
// is left to the node that broadcasts the transfer.
func validateBech32Shape(address string) error {
	if address != strings.ToLower(address) && address != strings.ToUpper(address) {
		return ErrInvalidAddress
	}
	lower := strings.ToLower(address)
	if len(lower) < 14 || len(lower) > 74 {
		return ErrInvalidAddress
	}
	for _, r := range lower[3:] {
		if !strings.ContainsRune(bech32Charset, r) {
			return ErrInvalidAddress
		}
	}
	return nil
}
