package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/overflowhosting/lockscreen/internal/common"
	"github.com/overflowhosting/lockscreen/internal/cryptox"
)

// secretFile is the on-disk installation secret. It stands in for the
// platform keystore: created once per installation, mode 0600, and the
// snapshot key is derived from it rather than stored directly.
type secretFile struct {
	InstallID string `json:"install_id"`
	Secret    []byte `json:"secret"`
	Salt      []byte `json:"salt"`
}

// LoadOrCreateKey returns the snapshot encryption key and the
// installation id, creating the secret file on first run.
func LoadOrCreateKey(path string) (key []byte, installID string, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return createKey(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read secret file: %w", err)
	}

	var sf secretFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, "", fmt.Errorf("parse secret file: %w", err)
	}
	if len(sf.Secret) == 0 || len(sf.Salt) == 0 {
		return nil, "", fmt.Errorf("secret file %s is incomplete", path)
	}

	return cryptox.DeriveKey(sf.Secret, sf.Salt), sf.InstallID, nil
}

func createKey(path string) ([]byte, string, error) {
	sf := secretFile{
		InstallID: uuid.NewString(),
		Secret:    common.GenerateRandByteArray(32),
		Salt:      common.GenerateRandByteArray(32),
	}

	data, err := json.Marshal(sf)
	if err != nil {
		return nil, "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, "", fmt.Errorf("write secret file: %w", err)
	}

	return cryptox.DeriveKey(sf.Secret, sf.Salt), sf.InstallID, nil
}
