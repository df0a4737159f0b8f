package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/vne-network/priceoracle-go/pkg/crypto/keys"
	"github.com/vne-network/priceoracle-go/pkg/encoding/address"
	"github.com/vne-network/priceoracle-go/pkg/util"
)

// ErrLocked is returned when signing with an account that wasn't decrypted.
var ErrLocked = errors.New("account is locked")

// Account is a signing identity: a secp256k1 key with its address and an
// optional encrypted keystore it was loaded from.
type Account struct {
	privateKey *keys.PrivateKey
	accountID  util.Uint160

	// Address is the checksummed account address.
	Address string

	// Label is a user-defined account name.
	Label string

	// Keystore is the encrypted form of the key, nil for accounts created
	// from a plain key.
	Keystore *Keystore
}

// NewAccount creates a new Account with a random private key.
func NewAccount() (*Account, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromPrivateKey creates an unlocked Account from the given key.
func NewAccountFromPrivateKey(p *keys.PrivateKey) *Account {
	id := p.AccountID()
	return &Account{
		privateKey: p,
		accountID:  id,
		Address:    address.Uint160ToString(id),
	}
}

// NewAccountFromHex creates an unlocked Account from a hex-encoded key.
func NewAccountFromHex(s string) (*Account, error) {
	priv, err := keys.NewPrivateKeyFromHex(s)
	if err != nil {
		return nil, err
	}
	return NewAccountFromPrivateKey(priv), nil
}

// NewAccountFromKeystore creates a locked Account from the given keystore,
// use Decrypt to unlock it.
func NewAccountFromKeystore(ks *Keystore) (*Account, error) {
	id, err := ks.AccountID()
	if err != nil {
		return nil, fmt.Errorf("invalid keystore address: %w", err)
	}
	return &Account{
		accountID: id,
		Address:   address.Uint160ToString(id),
		Keystore:  ks,
	}, nil
}

// NewAccountFromFile reads a keystore file and returns a locked Account.
func NewAccountFromFile(path string) (*Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ks := new(Keystore)
	if err := json.Unmarshal(data, ks); err != nil {
		return nil, fmt.Errorf("invalid keystore %s: %w", path, err)
	}
	return NewAccountFromKeystore(ks)
}

// Decrypt unlocks the account with the given password.
func (a *Account) Decrypt(password string) error {
	if a.Keystore == nil {
		return errors.New("no keystore in the account")
	}
	priv, err := a.Keystore.Decrypt(password)
	if err != nil {
		return err
	}
	a.privateKey = priv
	return nil
}

// Encrypt encrypts the account key into a new keystore.
func (a *Account) Encrypt(password string, params ScryptParams) error {
	if a.privateKey == nil {
		return ErrLocked
	}
	ks, err := Encrypt(a.privateKey, password, params)
	if err != nil {
		return err
	}
	a.Keystore = ks
	return nil
}

// Save writes the account keystore into the given file.
func (a *Account) Save(path string) error {
	if a.Keystore == nil {
		return errors.New("account is not encrypted")
	}
	data, err := json.MarshalIndent(a.Keystore, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// PrivateKey returns the private key of an unlocked account.
func (a *Account) PrivateKey() *keys.PrivateKey {
	return a.privateKey
}

// CanSign returns true for unlocked accounts.
func (a *Account) CanSign() bool {
	return a.privateKey != nil
}

// AccountID returns the 20-byte account id.
func (a *Account) AccountID() util.Uint160 {
	return a.accountID
}

// Sign signs the payload with the account key (keccak256 + ECDSA).
func (a *Account) Sign(payload []byte) ([]byte, error) {
	if a.privateKey == nil {
		return nil, ErrLocked
	}
	return a.privateKey.Sign(payload), nil
}

// Close wipes the private key, the account is locked after that.
func (a *Account) Close() {
	if a.privateKey != nil {
		a.privateKey.Destroy()
		a.privateKey = nil
	}
}
