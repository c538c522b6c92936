package wallet

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/hdevalence/ed25519consensus"
	"github.com/mr-tron/base58"
)

// PublicKey is an ed25519 public key.
type PublicKey [ed25519.PublicKeySize]byte

// String returns the base58 form used by explorers and RPC nodes.
func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

// ParsePublicKey decodes a base58 public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	raw, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("decode public key: %w", err)
	}
	if len(raw) != len(pk) {
		return pk, fmt.Errorf("decode public key: got %d bytes, want %d", len(raw), len(pk))
	}

	copy(pk[:], raw)
	return pk, nil
}

// Signer is the signing surface shared by local and remote wallets. The
// methods take a context because remote signers block on the user.
type Signer interface {
	PublicKey() PublicKey
	SignTransaction(ctx context.Context, tx *Transaction) (*Transaction, error)
	SignAllTransactions(ctx context.Context, txs []*Transaction) ([]*Transaction, error)
	SignMessage(ctx context.Context, message []byte) ([]byte, error)
}

// Signature is one signer's signature over a transaction message.
type Signature struct {
	PublicKey PublicKey
	Bytes     []byte
}

// Transaction is a serialized message plus the signatures collected so far.
type Transaction struct {
	Message    []byte
	Signatures []Signature
}

// Verify checks every collected signature against the message.
func (tx *Transaction) Verify() error {
	if len(tx.Signatures) == 0 {
		return errors.New("transaction has no signatures")
	}

	for _, sig := range tx.Signatures {
		if !Verify(sig.PublicKey, tx.Message, sig.Bytes) {
			return fmt.Errorf("invalid signature for %s", sig.PublicKey)
		}
	}
	return nil
}

// Wallet signs with the keypair from the persisted record, without asking
// for confirmation.
type Wallet struct {
	key       ed25519.PrivateKey
	publicKey PublicKey
}

var _ Signer = (*Wallet)(nil)

// New builds a wallet from a record. A key whose public half does not match
// its seed is rejected.
func New(rec Record) (*Wallet, error) {
	if err := rec.SecretKey.validate(); err != nil {
		return nil, err
	}

	key := ed25519.PrivateKey(append([]byte(nil), rec.SecretKey...))
	w := &Wallet{key: key}
	copy(w.publicKey[:], key.Public().(ed25519.PublicKey))
	return w, nil
}

// Load reads (or provisions) the record in s and builds its wallet.
func Load(s *Store) (*Wallet, error) {
	rec, err := s.GetOrCreate()
	if err != nil {
		return nil, err
	}

	return New(rec)
}

// PublicKey is always set, even while disconnected.
func (w *Wallet) PublicKey() PublicKey {
	return w.publicKey
}

// SecretKey returns a copy of the keypair bytes.
func (w *Wallet) SecretKey() SecretKey {
	return SecretKey(append([]byte(nil), w.key...))
}

// SignTransaction adds or replaces this wallet's signature on tx.
func (w *Wallet) SignTransaction(ctx context.Context, tx *Transaction) (*Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, errors.New("transaction must not be nil")
	}

	sig := Signature{PublicKey: w.publicKey, Bytes: ed25519.Sign(w.key, tx.Message)}
	for i := range tx.Signatures {
		if tx.Signatures[i].PublicKey == w.publicKey {
			tx.Signatures[i] = sig
			return tx, nil
		}
	}

	tx.Signatures = append(tx.Signatures, sig)
	return tx, nil
}

// SignAllTransactions signs each transaction in order.
func (w *Wallet) SignAllTransactions(ctx context.Context, txs []*Transaction) ([]*Transaction, error) {
	for i, tx := range txs {
		if _, err := w.SignTransaction(ctx, tx); err != nil {
			return nil, fmt.Errorf("sign transaction %d: %w", i, err)
		}
	}

	return txs, nil
}

// SignMessage signs an arbitrary message.
func (w *Wallet) SignMessage(ctx context.Context, message []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ed25519.Sign(w.key, message), nil
}

// Verify reports whether sig is a valid signature of message by pub, using
// ZIP-215 validation rules.
func Verify(pub PublicKey, message []byte, sig []byte) bool {
	return ed25519consensus.Verify(ed25519.PublicKey(pub[:]), message, sig)
}
