// Package contract simulates split contract deployment. No transaction is
// sent; the "deployed" address is derived deterministically from the split.
package contract

import (
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Address returns the EIP-55 checksummed address a split would be deployed
// at: the last 20 bytes of keccak256(id || name || createdAt).
func Address(id, name string, createdAt time.Time) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(id))
	h.Write([]byte(name))
	h.Write([]byte(strconv.FormatInt(createdAt.UnixNano(), 10)))
	sum := h.Sum(nil)
	return common.BytesToAddress(sum[12:]).Hex()
}

// ExplorerURL joins a block explorer base URL and an address.
func ExplorerURL(base, address string) string {
	if base == "" {
		return ""
	}
	if base[len(base)-1] != '/' {
		base += "/"
	}
	return base + address
}
