package models

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "voteledger/pkg/domain-errors"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// NormalizeWallet validates a wallet address and returns its canonical
// lower-case form. Mixed-case input must carry a valid EIP-55 checksum.
func NormalizeWallet(raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if strings.HasPrefix(addr, "0X") {
		addr = "0x" + addr[2:]
	}
	if !walletPattern.MatchString(addr) {
		return "", dErrors.New(dErrors.CodeInvalidWallet, "wallet address must be 0x followed by 40 hex characters")
	}
	body := addr[2:]
	lower := strings.ToLower(body)
	if body != lower && body != strings.ToUpper(body) {
		if checksumAddress(lower) != body {
			return "", dErrors.New(dErrors.CodeInvalidWallet, "wallet address checksum mismatch")
		}
	}
	return "0x" + lower, nil
}

// checksumAddress applies EIP-55 casing to a lower-case 40 char hex body.
func checksumAddress(lower string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && digest[i] >= '8' {
			out[i] = c - 32
		}
	}
	return string(out)
}
