package mintr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/argon2"
)

var ErrBadPassword = errors.New("wrong password or corrupt keystore")

type Keypair struct {
	Pubkey string
	Secret []byte
}

func (k Keypair) PrivateKey() solana.PrivateKey {
	return solana.PrivateKey(k.Secret)
}

// keystoreFile is the on-disk layout of an encrypted keypair.
type keystoreFile struct {
	Version int    `json:"version"`
	Pubkey  string `json:"pubkey"`
	Salt    string `json:"salt"`
	Keypair string `json:"keypair"`
}

func Generate() (mnemonic string, kp Keypair, err error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", Keypair{}, err
	}
	mnemonic, err = bip39.NewMnemonic(entropy)
	if err != nil {
		return "", Keypair{}, err
	}
	kp, err = Recover(mnemonic)
	return mnemonic, kp, err
}

func Recover(mnemonic string) (Keypair, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return Keypair{}, errors.New("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])

	return Keypair{
		Pubkey: base58.Encode(priv.Public().(ed25519.PublicKey)),
		Secret: []byte(priv),
	}, nil
}

func SaveKeystore(path string, kp Keypair, password []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	enc, err := sealSecret(kp.Secret, password, salt)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(keystoreFile{
		Version: 1,
		Pubkey:  kp.Pubkey,
		Salt:    hex.EncodeToString(salt),
		Keypair: hex.EncodeToString(enc),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func LoadKeystore(path string, password []byte) (Keypair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Keypair{}, err
	}

	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return Keypair{}, fmt.Errorf("keystore: %w", err)
	}
	salt, err := hex.DecodeString(ks.Salt)
	if err != nil {
		return Keypair{}, fmt.Errorf("keystore salt: %w", err)
	}
	enc, err := hex.DecodeString(ks.Keypair)
	if err != nil {
		return Keypair{}, fmt.Errorf("keystore keypair: %w", err)
	}

	secret, err := openSecret(enc, password, salt)
	if err != nil {
		return Keypair{}, err
	}
	if len(secret) != ed25519.PrivateKeySize {
		return Keypair{}, ErrBadPassword
	}
	return Keypair{
		Pubkey: base58.Encode(secret[32:]),
		Secret: secret,
	}, nil
}

// KeystorePubkey reads the public key without the password.
func KeystorePubkey(path string) (solana.PublicKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return solana.PublicKey{}, err
	}
	var ks keystoreFile
	if err := json.Unmarshal(data, &ks); err != nil {
		return solana.PublicKey{}, fmt.Errorf("keystore: %w", err)
	}
	return solana.PublicKeyFromBase58(ks.Pubkey)
}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func sealSecret(data, password, salt []byte) ([]byte, error) {
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func openSecret(data, password, salt []byte) ([]byte, error) {
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	out, err := gcm.Open(nil, data[:gcm.NonceSize()], data[gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrBadPassword
	}
	return out, nil
}

func newGCM(password, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
