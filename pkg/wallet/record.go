package wallet

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// StorageKey is the storage key holding the persisted wallet record.
const StorageKey = "wallet"

// SecretKeySize is the length of an ed25519 keypair: 32 seed bytes followed
// by the 32 public key bytes.
const SecretKeySize = ed25519.PrivateKeySize

var (
	// ErrInvalidKey reports secret key bytes that are not a valid keypair.
	ErrInvalidKey = errors.New("invalid wallet secret key")
	// ErrNotConnected is returned by operations that need a connected wallet.
	ErrNotConnected = errors.New("wallet is not connected")
)

// ConnectHint is shown to users who run a command that needs a connected
// wallet.
const ConnectHint = "Playground Wallet must be connected to run this command. Run connect to connect."

// SecretKey holds keypair bytes. It encodes to JSON as an array of numbers
// rather than base64 so the stored record matches its documented shape.
type SecretKey []byte

func (k SecretKey) MarshalJSON() ([]byte, error) {
	nums := make([]int, len(k))
	for i, b := range k {
		nums[i] = int(b)
	}

	return json.Marshal(nums)
}

func (k *SecretKey) UnmarshalJSON(data []byte) error {
	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(nums) != SecretKeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(nums), SecretKeySize)
	}

	key := make(SecretKey, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("%w: byte %d out of range", ErrInvalidKey, i)
		}
		key[i] = byte(n)
	}

	*k = key
	return nil
}

// Record is the locally persisted wallet state.
type Record struct {
	// SetupCompleted is set once the user accepted the initial setup prompt.
	SetupCompleted bool `json:"setupCompleted"`
	// Connected reports whether the wallet is connected.
	Connected bool `json:"connected"`
	// SecretKey is only ever replaced whole.
	SecretKey SecretKey `json:"sk"`
}

func (r Record) clone() Record {
	r.SecretKey = slices.Clone(r.SecretKey)
	return r
}

// Patch lists the record fields an update may change. Nil fields are left
// untouched; SecretKey replaces the whole key when set.
type Patch struct {
	SetupCompleted *bool
	Connected      *bool
	SecretKey      SecretKey
}

// Bool is a helper for building patches.
func Bool(v bool) *bool {
	return &v
}

// RequireConnected returns ErrNotConnected when the record is disconnected.
func RequireConnected(r Record) error {
	if !r.Connected {
		return ErrNotConnected
	}
	return nil
}

// validate checks that k is a full keypair whose public half derives from
// its seed.
func (k SecretKey) validate() error {
	if len(k) != SecretKeySize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(k), SecretKeySize)
	}
	derived := ed25519.NewKeyFromSeed(k[:ed25519.SeedSize])
	if !slices.Equal([]byte(derived), []byte(k)) {
		return fmt.Errorf("%w: public key does not match seed", ErrInvalidKey)
	}
	return nil
}

// GenerateSecretKey returns a fresh random ed25519 keypair.
func GenerateSecretKey() (SecretKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}

	return SecretKey(priv), nil
}
