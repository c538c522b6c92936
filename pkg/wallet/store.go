package wallet

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"pgbus/pkg/storage"
)

// Store reads and writes the wallet record in a key/value store.
type Store struct {
	kv       storage.Store
	log      *slog.Logger
	generate func() (SecretKey, error)

	mu sync.Mutex
}

// NewStore wraps kv. A nil logger falls back to slog.Default.
func NewStore(kv storage.Store, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{
		kv:       kv,
		log:      log.With("component", "wallet.store"),
		generate: GenerateSecretKey,
	}
}

// Load returns the persisted record. Absent or unreadable records report
// false; only storage failures are errors.
func (s *Store) Load() (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// GetOrCreate returns the persisted record, provisioning and saving a new
// disconnected record with a fresh key when none can be read.
func (s *Store) GetOrCreate() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.load()
	if err != nil {
		return Record{}, err
	}
	if ok {
		return rec, nil
	}

	rec, err = s.provision()
	if err != nil {
		return Record{}, err
	}
	return rec.clone(), nil
}

// Update merges p into the persisted record and returns the result. A
// missing record is provisioned first.
func (s *Store) Update(p Patch) (Record, error) {
	if p.SecretKey != nil {
		if err := p.SecretKey.validate(); err != nil {
			return Record{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok, err := s.load()
	if err != nil {
		return Record{}, err
	}
	if !ok {
		if rec, err = s.provision(); err != nil {
			return Record{}, err
		}
	}

	if p.SetupCompleted != nil {
		rec.SetupCompleted = *p.SetupCompleted
	}
	if p.Connected != nil {
		rec.Connected = *p.Connected
	}
	if p.SecretKey != nil {
		rec.SecretKey = SecretKey(append([]byte(nil), p.SecretKey...))
	}

	if err := s.save(rec); err != nil {
		return Record{}, err
	}
	return rec.clone(), nil
}

func (s *Store) load() (Record, bool, error) {
	raw, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		return Record{}, false, fmt.Errorf("read wallet record: %w", err)
	}
	if !ok || raw == "" {
		return Record{}, false, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.Warn("Discarding unreadable wallet record", "error", err)
		return Record{}, false, nil
	}
	if err := rec.SecretKey.validate(); err != nil {
		s.log.Warn("Discarding wallet record with unusable secret key", "error", err)
		return Record{}, false, nil
	}

	return rec, true, nil
}

func (s *Store) provision() (Record, error) {
	key, err := s.generate()
	if err != nil {
		return Record{}, err
	}

	rec := Record{SecretKey: key}
	if err := s.save(rec); err != nil {
		return Record{}, err
	}

	s.log.Info("Provisioned wallet record")
	return rec, nil
}

func (s *Store) save(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode wallet record: %w", err)
	}
	if err := s.kv.Set(StorageKey, string(raw)); err != nil {
		return fmt.Errorf("write wallet record: %w", err)
	}

	return nil
}
