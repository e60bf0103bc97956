package secrets

import (
	"errors"
	"fmt"
	"strings"

	"autoapply-engine/internal/config"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "autoapply"

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("IMAP password not found (set it with `autoapply secret set`)")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"autoapply:imap:%s@%s",
		cfg.Sources.Alerts.Username,
		cfg.Sources.Alerts.IMAPHost,
	)
}
