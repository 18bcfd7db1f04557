package credentials

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// FileStore implements Store backed by a single file on disk. Writes go
// through a temp file and rename so a crash never leaves a half-written
// credential. A mutex serializes access; the single-threaded event model of
// the app does not require one, but the store must stay correct when
// embedded in a multithreaded host.
type FileStore struct {
	mu   sync.Mutex
	path string
	aead cipher.AEAD
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore) error

// WithSealingKey seals the credential at rest with XChaCha20-Poly1305.
// The key material may be any length; a 256-bit cipher key is derived from
// it. The token itself stays opaque — sealing protects the file content,
// not the token semantics.
func WithSealingKey(key []byte) FileStoreOption {
	return func(s *FileStore) error {
		if len(key) == 0 {
			return errors.Join(ErrSealing, errors.New("empty sealing key"))
		}
		derived := sha256.Sum256(key)
		aead, err := chacha20poly1305.NewX(derived[:])
		if err != nil {
			return errors.Join(ErrSealing, err)
		}
		s.aead = aead
		return nil
	}
}

// NewFileStore creates a durable credential store at path. The parent
// directory is created if missing. Pass an empty path to use DefaultPath.
func NewFileStore(path string, opts ...FileStoreOption) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	s := &FileStore{path: path}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// DefaultPath returns the per-user location of the credential file.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Join(ErrStorage, err)
	}
	return filepath.Join(dir, "arborvest", "credential"), nil
}

// Get returns the stored credential, or ErrNoCredential when absent.
func (s *FileStore) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredential
		}
		return "", errors.Join(ErrStorage, err)
	}
	if len(raw) == 0 {
		return "", ErrNoCredential
	}

	token, err := s.unseal(raw)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Set replaces the credential on disk atomically.
func (s *FileStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.seal(token)
	if err != nil {
		return err
	}
	return s.writeAtomic(raw)
}

// Clear removes the credential file. Clearing an empty store is a no-op.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *FileStore) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credential-*")
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *FileStore) seal(token string) ([]byte, error) {
	if s.aead == nil {
		return []byte(token), nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Join(ErrSealing, err)
	}
	return s.aead.Seal(nonce, nonce, []byte(token), nil), nil
}

func (s *FileStore) unseal(raw []byte) (string, error) {
	if s.aead == nil {
		return string(raw), nil
	}

	if len(raw) < s.aead.NonceSize() {
		return "", errors.Join(ErrSealing, errors.New("sealed credential too short"))
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.Join(ErrSealing, err)
	}
	return string(plain), nil
}
