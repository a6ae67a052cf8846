// Package securefile reads and writes password-encrypted JSON files.
// Keys are derived with Argon2id and sealed with XChaCha20-Poly1305.
package securefile

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrInvalidPasswordOrCorrupt is returned when decryption fails.
var ErrInvalidPasswordOrCorrupt = errors.New("invalid password or corrupted file")

// Envelope is the on-disk form of an encrypted file.
type Envelope struct {
	Version int `json:"version"`

	ArgonTime    uint32 `json:"argon_time"`
	ArgonMemory  uint32 `json:"argon_memory_kib"`
	ArgonThreads uint8  `json:"argon_threads"`
	ArgonKeyLen  uint32 `json:"argon_key_len"`

	SaltB64  string `json:"salt_b64"`
	NonceB64 string `json:"nonce_b64"`
	CTB64    string `json:"ct_b64"`
}

// DefaultKDF is used when Options.KDF is left zero.
var DefaultKDF = Envelope{
	Version:      1,
	ArgonTime:    2,
	ArgonMemory:  64 * 1024, // KiB
	ArgonThreads: 1,
	ArgonKeyLen:  32,
}

// Options controls encryption behavior. Zero fields take defaults.
type Options struct {
	KDF           Envelope
	FilePerm      os.FileMode
	DirectoryPerm os.FileMode

	// AAD is bound into the ciphertext and must match on read.
	AAD []byte
}

func (o Options) withDefaults() Options {
	if o.KDF.Version == 0 {
		o.KDF = DefaultKDF
	}
	if o.FilePerm == 0 {
		o.FilePerm = 0o600
	}
	if o.DirectoryPerm == 0 {
		o.DirectoryPerm = 0o700
	}
	return o
}

// WriteEncryptedJSON marshals v, encrypts it and replaces path atomically.
func WriteEncryptedJSON[T any](fsys afero.Fs, path string, v T, password []byte, opt Options) error {
	o := opt.withDefaults()
	if o.KDF.Version != 1 {
		return fmt.Errorf("unsupported kdf version: %d", o.KDF.Version)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), o.DirectoryPerm); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("rand salt: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("rand nonce: %w", err)
	}

	key := argon2.IDKey(password, salt, o.KDF.ArgonTime, o.KDF.ArgonMemory, o.KDF.ArgonThreads, o.KDF.ArgonKeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return fmt.Errorf("aead: %w", err)
	}

	env := o.KDF
	env.SaltB64 = base64.StdEncoding.EncodeToString(salt)
	env.NonceB64 = base64.StdEncoding.EncodeToString(nonce)
	env.CTB64 = base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plain, o.AAD))

	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return atomicWriteFile(fsys, path, b, o.FilePerm)
}

// ReadEncryptedJSON decrypts path with password and unmarshals into T.
// A missing file surfaces as an error matching os.ErrNotExist.
func ReadEncryptedJSON[T any](fsys afero.Fs, path string, password []byte, opt Options) (T, error) {
	var zero T
	o := opt.withDefaults()

	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return zero, fmt.Errorf("read file: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return zero, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return zero, fmt.Errorf("unsupported file version: %d", env.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(env.SaltB64)
	if err != nil {
		return zero, fmt.Errorf("decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(env.NonceB64)
	if err != nil {
		return zero, fmt.Errorf("decode nonce: %w", err)
	}
	ct, err := base64.StdEncoding.DecodeString(env.CTB64)
	if err != nil {
		return zero, fmt.Errorf("decode ciphertext: %w", err)
	}

	key := argon2.IDKey(password, salt, env.ArgonTime, env.ArgonMemory, env.ArgonThreads, env.ArgonKeyLen)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return zero, fmt.Errorf("aead: %w", err)
	}
	plain, err := aead.Open(nil, nonce, ct, o.AAD)
	if err != nil {
		return zero, ErrInvalidPasswordOrCorrupt
	}

	var out T
	if err := json.Unmarshal(plain, &out); err != nil {
		return zero, fmt.Errorf("unmarshal json: %w", err)
	}
	return out, nil
}

// DefaultPath returns the first candidate from PathCandidates.
func DefaultPath(app, filename string) (string, error) {
	paths, err := PathCandidates(app, filename)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// PathCandidates lists <home>/.config/<app>/<env?>/<filename> locations in
// priority order. TOKEN_SESSION_ENV selects an optional subfolder.
func PathCandidates(app, filename string) ([]string, error) {
	if app == "" {
		return nil, errors.New("app must not be empty")
	}
	if filename == "" {
		return nil, errors.New("filename must not be empty")
	}
	envFolder, err := EnvFolder()
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := map[string]bool{}
	add := func(dir string) {
		if envFolder != "" {
			dir = filepath.Join(dir, envFolder)
		}
		p := filepath.Join(dir, filename)
		if seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(filepath.Join(realHome, ".config", app))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(filepath.Join(home, ".config", app))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		add(filepath.Join(dir, app))
	} else if len(paths) == 0 {
		return nil, fmt.Errorf("UserConfigDir: %w", err)
	}
	return paths, nil
}

// EnvFolder maps TOKEN_SESSION_ENV to a config subfolder. Empty means the
// default layout.
func EnvFolder() (string, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("TOKEN_SESSION_ENV")))
	switch raw {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", fmt.Errorf("invalid TOKEN_SESSION_ENV %q (allowed: local, develop, empty)", raw)
	}
}

func atomicWriteFile(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	_ = fsys.Remove(tmp)

	if err := afero.WriteFile(fsys, tmp, data, perm); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
