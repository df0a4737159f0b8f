package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vne-network/priceoracle-go/pkg/crypto/hash"
	"github.com/vne-network/priceoracle-go/pkg/crypto/keys"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"golang.org/x/crypto/scrypt"
	"golang.org/x/text/unicode/norm"
)

const (
	// KeystoreVersion is the supported keystore format version.
	KeystoreVersion = 3

	cipherName = "aes-128-ctr"
	kdfName    = "scrypt"
	dkLen      = 32
	saltLen    = 32
)

var (
	// ErrDecryption is returned when the password doesn't match the keystore.
	ErrDecryption = errors.New("could not decrypt key with given password")
	// ErrUnsupportedKeystore is returned for unknown ciphers, KDFs and
	// versions.
	ErrUnsupportedKeystore = errors.New("unsupported keystore")
)

// ScryptParams are scrypt key derivation parameters.
type ScryptParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// NewScryptParams returns the standard (Ethereum "standard") parameters.
func NewScryptParams() ScryptParams {
	return ScryptParams{N: 1 << 18, R: 8, P: 1}
}

type (
	// Keystore is an encrypted private key in the Ethereum v3 keystore format.
	Keystore struct {
		Address string       `json:"address"`
		Crypto  cryptoParams `json:"crypto"`
		ID      string       `json:"id"`
		Version int          `json:"version"`
	}

	cryptoParams struct {
		Cipher       string       `json:"cipher"`
		CipherText   string       `json:"ciphertext"`
		CipherParams cipherParams `json:"cipherparams"`
		KDF          string       `json:"kdf"`
		KDFParams    kdfParams    `json:"kdfparams"`
		MAC          string       `json:"mac"`
	}

	cipherParams struct {
		IV string `json:"iv"`
	}

	kdfParams struct {
		DKLen int    `json:"dklen"`
		N     int    `json:"n"`
		P     int    `json:"p"`
		R     int    `json:"r"`
		Salt  string `json:"salt"`
	}
)

// Encrypt encrypts the key with the given password.
func Encrypt(key *keys.PrivateKey, password string, params ScryptParams) (*Keystore, error) {
	salt := make([]byte, saltLen)
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	derived, err := deriveKey(password, salt, params)
	if err != nil {
		return nil, err
	}
	defer clear(derived)

	plain := key.Bytes()
	defer clear(plain)
	ct, err := aesCTR(derived[:16], iv, plain)
	if err != nil {
		return nil, err
	}
	mac := keystoreMAC(derived, ct)
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &Keystore{
		Address: key.AccountID().StringBE(),
		Crypto: cryptoParams{
			Cipher:       cipherName,
			CipherText:   hex.EncodeToString(ct),
			CipherParams: cipherParams{IV: hex.EncodeToString(iv)},
			KDF:          kdfName,
			KDFParams: kdfParams{
				DKLen: dkLen,
				N:     params.N,
				P:     params.P,
				R:     params.R,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac[:]),
		},
		ID:      id.String(),
		Version: KeystoreVersion,
	}, nil
}

// Decrypt decrypts the private key.
func (k *Keystore) Decrypt(password string) (*keys.PrivateKey, error) {
	if k.Version != KeystoreVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedKeystore, k.Version)
	}
	if k.Crypto.Cipher != cipherName {
		return nil, fmt.Errorf("%w: cipher %q", ErrUnsupportedKeystore, k.Crypto.Cipher)
	}
	if k.Crypto.KDF != kdfName {
		return nil, fmt.Errorf("%w: kdf %q", ErrUnsupportedKeystore, k.Crypto.KDF)
	}
	if k.Crypto.KDFParams.DKLen != dkLen {
		return nil, fmt.Errorf("%w: dklen %d", ErrUnsupportedKeystore, k.Crypto.KDFParams.DKLen)
	}
	salt, err := hex.DecodeString(k.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, fmt.Errorf("invalid salt: %w", err)
	}
	iv, err := hex.DecodeString(k.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	ct, err := hex.DecodeString(k.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("invalid ciphertext: %w", err)
	}
	mac, err := hex.DecodeString(k.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("invalid mac: %w", err)
	}

	p := k.Crypto.KDFParams
	derived, err := deriveKey(password, salt, ScryptParams{N: p.N, R: p.R, P: p.P})
	if err != nil {
		return nil, err
	}
	defer clear(derived)
	expected := keystoreMAC(derived, ct)
	if !bytes.Equal(mac, expected[:]) {
		return nil, ErrDecryption
	}

	plain, err := aesCTR(derived[:16], iv, ct)
	if err != nil {
		return nil, err
	}
	defer clear(plain)
	priv, err := keys.NewPrivateKeyFromBytes(plain)
	if err != nil {
		return nil, err
	}
	if k.Address != "" {
		addr, err := k.AccountID()
		if err != nil {
			return nil, err
		}
		if !priv.AccountID().Equals(addr) {
			priv.Destroy()
			return nil, errors.New("decrypted key doesn't match keystore address")
		}
	}
	return priv, nil
}

// AccountID returns the account stored in the keystore, it's available
// without decryption.
func (k *Keystore) AccountID() (util.Uint160, error) {
	return util.Uint160DecodeStringBE(strings.TrimPrefix(k.Address, "0x"))
}

func deriveKey(password string, salt []byte, p ScryptParams) ([]byte, error) {
	pass := []byte(norm.NFC.String(password))
	defer clear(pass)
	return scrypt.Key(pass, salt, p.N, p.R, p.P, dkLen)
}

func aesCTR(key, iv, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("invalid iv length %d", len(iv))
	}
	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

func keystoreMAC(derived, ct []byte) util.Uint256 {
	data := make([]byte, 0, 16+len(ct))
	data = append(data, derived[16:32]...)
	data = append(data, ct...)
	return hash.Keccak256(data)
}
