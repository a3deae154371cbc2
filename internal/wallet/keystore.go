package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/scrypt"
)

// KeystoreV3 is an Ethereum-compatible keystore v3 file. Exporting a burner
// key to a keystore is the only persistence this package offers, and it is
// explicit opt-in: the account's lifecycle state (expiry, used flag) is never
// written anywhere.
type KeystoreV3 struct {
	Version int      `json:"version"`
	ID      string   `json:"id"`
	Address string   `json:"address"`
	Crypto  CryptoV3 `json:"crypto"`
}

// CryptoV3 holds the encrypted key data.
type CryptoV3 struct {
	Cipher       string         `json:"cipher"`
	CipherText   string         `json:"ciphertext"`
	CipherParams CipherParamsV3 `json:"cipherparams"`
	KDF          string         `json:"kdf"`
	KDFParams    ScryptParamsV3 `json:"kdfparams"`
	MAC          string         `json:"mac"`
}

// CipherParamsV3 holds the AES-128-CTR IV.
type CipherParamsV3 struct {
	IV string `json:"iv"`
}

// ScryptParamsV3 holds scrypt KDF parameters.
type ScryptParamsV3 struct {
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	DKLen int    `json:"dklen"`
	Salt  string `json:"salt"`
}

// Standard scrypt parameters (matches go-ethereum defaults). Keystore
// encryption should be slow to resist brute force.
const (
	ScryptN     = 262144 // 2^18
	ScryptR     = 8
	ScryptP     = 1
	ScryptDKLen = 32
)

// Light scrypt parameters for tests and low-memory systems.
const (
	LightScryptN = 4096 // 2^12
	LightScryptR = 8
	LightScryptP = 6
)

// ExportKeystore encrypts a keypair into a keystore v3 with standard
// parameters.
func ExportKeystore(kp *Keypair, password string) (*KeystoreV3, error) {
	return exportKeystoreWithParams(kp, password, ScryptN, ScryptR, ScryptP)
}

// ExportKeystoreLight encrypts with lighter parameters (faster, weaker).
func ExportKeystoreLight(kp *Keypair, password string) (*KeystoreV3, error) {
	return exportKeystoreWithParams(kp, password, LightScryptN, LightScryptR, LightScryptP)
}

func exportKeystoreWithParams(kp *Keypair, password string, n, r, p int) (*KeystoreV3, error) {
	privBytes := kp.PrivateKeyBytes()

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, n, r, p, ScryptDKLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	// First 16 bytes encrypt, bytes 16-32 authenticate.
	encKey := derivedKey[:16]

	iv := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	ciphertext := make([]byte, len(privBytes))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(ciphertext, privBytes)

	// MAC = keccak256(derivedKey[16:32] || ciphertext), per keystore v3.
	macData := append(derivedKey[16:32], ciphertext...)
	mac := crypto.Keccak256(macData)

	uuid, err := generateUUID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %w", err)
	}

	addr := strings.ToLower(strings.TrimPrefix(kp.Address().Hex(), "0x"))

	return &KeystoreV3{
		Version: 3,
		ID:      uuid,
		Address: addr,
		Crypto: CryptoV3{
			Cipher:     "aes-128-ctr",
			CipherText: hex.EncodeToString(ciphertext),
			CipherParams: CipherParamsV3{
				IV: hex.EncodeToString(iv),
			},
			KDF: "scrypt",
			KDFParams: ScryptParamsV3{
				N:     n,
				R:     r,
				P:     p,
				DKLen: ScryptDKLen,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}, nil
}

// DecryptKeystore decrypts a keystore back into a usable keypair.
func DecryptKeystore(ks *KeystoreV3, password string) (*Keypair, error) {
	if ks.Crypto.KDF != "scrypt" {
		return nil, errors.New("unsupported KDF: only scrypt is supported")
	}
	if ks.Crypto.Cipher != "aes-128-ctr" {
		return nil, errors.New("unsupported cipher: only aes-128-ctr is supported")
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %w", err)
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid IV: %w", err)
	}

	storedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("invalid MAC: %w", err)
	}

	kdf := ks.Crypto.KDFParams
	derivedKey, err := scrypt.Key([]byte(password), salt, kdf.N, kdf.R, kdf.P, kdf.DKLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	macData := append(derivedKey[16:32], ciphertext...)
	calculatedMAC := crypto.Keccak256(macData)
	if subtle.ConstantTimeCompare(storedMAC, calculatedMAC) != 1 {
		return nil, errors.New("incorrect password or corrupted keystore")
	}

	block, err := aes.NewCipher(derivedKey[:16])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	privBytes := make([]byte, len(ciphertext))
	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(privBytes, ciphertext)

	privKey, err := crypto.ToECDSA(privBytes)
	if err != nil {
		return nil, fmt.Errorf("decrypted data is not a valid private key: %w", err)
	}
	return &Keypair{privateKey: privKey}, nil
}

// SaveKeystore writes a keystore file with owner-only permissions.
func SaveKeystore(ks *KeystoreV3, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keystore: %w", err)
	}

	return nil
}

// LoadKeystore reads and validates a keystore file without decrypting it.
func LoadKeystore(path string) (*KeystoreV3, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore: %w", err)
	}

	var ks KeystoreV3
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("failed to parse keystore: %w", err)
	}

	if ks.Version != 3 || ks.Address == "" || ks.Crypto.CipherText == "" {
		return nil, fmt.Errorf("invalid keystore v3 format")
	}

	return &ks, nil
}

// DefaultKeystoreDir returns the default directory for exported burner keys.
func DefaultKeystoreDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".burner", "keys"), nil
}

// KeystoreFilename builds a geth-style filename for an exported key:
// UTC--<timestamp>--<label>--<address>.json
func KeystoreFilename(label string, addr string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "burner"
	}

	label = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, label)

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05.000000000Z")
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")

	return fmt.Sprintf("UTC--%s--%s--%s.json", timestamp, label, addr)
}

// generateUUID generates a random UUID v4.
func generateUUID() (string, error) {
	uuid := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, uuid); err != nil {
		return "", err
	}

	uuid[6] = (uuid[6] & 0x0f) | 0x40
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		uuid[0:4],
		uuid[4:6],
		uuid[6:8],
		uuid[8:10],
		uuid[10:16],
	), nil
}
