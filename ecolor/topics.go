package ecolor

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// Identity names one device on the vendor broker
type Identity struct {
	SKU         string
	AccountHash string // uppercase hex MD5 of the owner's email
	GUID        string
}

// NewIdentity derives the account hash from the owner's email
func NewIdentity(sku, email, guid string) Identity {
	return Identity{
		SKU:         sku,
		AccountHash: AccountHash(email),
		GUID:        guid,
	}
}

// AccountHash is the broker's per-account namespace key, not a secret
func AccountHash(email string) string {
	sum := md5.Sum([]byte(email))
	return strings.ToUpper(fmt.Sprintf("%x", sum))
}

func (i Identity) base() string {
	return fmt.Sprintf("%s/%s/%s", i.SKU, i.AccountHash, i.GUID)
}

// InboundTopic is where the device reports to us
func (i Identity) InboundTopic() string {
	return i.base() + "/TOAPP"
}

// OutboundTopic is where we send commands
func (i Identity) OutboundTopic() string {
	return i.base() + "/TODEV"
}
