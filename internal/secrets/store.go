package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// per-user API token store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but keeps tokens out of config.toml.

const fileName = "tokens.json"

// ErrNoToken is returned when no token is stored for an endpoint.
var ErrNoToken = errors.New("no token stored")

// configDir is swapped in tests.
var configDir = os.UserConfigDir

type tokenFile struct {
	Tokens map[string]string `json:"tokens"` // endpoint host -> base64(ciphertext)
}

// StoreToken saves the API token used for baseURL.
func StoreToken(baseURL, token string) error {
	host, err := endpoint(baseURL)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token required")
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	tf, err := load(path)
	if err != nil {
		return err
	}
	if tf.Tokens == nil {
		tf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(strings.TrimSpace(token)))
	if err != nil {
		return err
	}
	tf.Tokens[host] = base64.StdEncoding.EncodeToString(ct)
	return save(path, tf)
}

// FetchToken returns the token stored for baseURL.
func FetchToken(baseURL string) (string, error) {
	host, err := endpoint(baseURL)
	if err != nil {
		return "", err
	}
	path, err := filePath()
	if err != nil {
		return "", err
	}
	tf, err := load(path)
	if err != nil {
		return "", err
	}
	enc, ok := tf.Tokens[host]
	if !ok {
		return "", fmt.Errorf("%s: %w", host, ErrNoToken)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt token for %s: %w", host, err)
	}
	return string(pt), nil
}

// DeleteToken forgets the token stored for baseURL.
func DeleteToken(baseURL string) error {
	host, err := endpoint(baseURL)
	if err != nil {
		return err
	}
	path, err := filePath()
	if err != nil {
		return err
	}
	tf, err := load(path)
	if err != nil {
		return err
	}
	delete(tf.Tokens, host)
	return save(path, tf)
}

// endpoint keys tokens by scheme and host so paths and trailing slashes
// share one entry.
func endpoint(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", baseURL)
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}

func filePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "contactimport")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func load(path string) (tokenFile, error) {
	var tf tokenFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tokenFile{}, nil
		}
		return tf, err
	}
	if err := json.Unmarshal(data, &tf); err != nil {
		return tf, fmt.Errorf("%s: %w", path, err)
	}
	return tf, nil
}

func save(path string, tf tokenFile) error {
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func masterKey() []byte {
	base := fmt.Sprintf("contactimport-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
