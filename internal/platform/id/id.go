package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

type RandomHex struct{}

func (RandomHex) New() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// UUID generates RFC 4122 v4 identifiers for rows shared with the backend.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

const deviceAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewDeviceID returns an identifier for one process lifetime, e.g.
// device_1718000000000_k3j9x0a1b. It is never persisted.
func NewDeviceID(now time.Time) string {
	suffix, err := gonanoid.Generate(deviceAlphabet, 9)
	if err != nil {
		suffix = RandomHex{}.New()[:9]
	}
	return fmt.Sprintf("device_%d_%s", now.UnixMilli(), suffix)
}
