package config

import (
	"fmt"
	"os"
	"strings"
)

// CredentialProvider resolves the secret for a given secret id and account.
// It is injected into collaborators that authenticate, so no component
// reaches into an ambient secret store.
type CredentialProvider interface {
	GetSecret(id, account string) (string, error)
}

// EnvCredentials resolves secrets from the process environment. The lookup
// key is the upper-cased secret id (dashes mapped to underscores) with a
// _PASSWORD suffix, e.g. secret id "steam-ledger" reads
// STEAM_LEDGER_PASSWORD. Combined with LoadEnv this also covers .env files.
type EnvCredentials struct{}

// GetSecret implements CredentialProvider.
func (EnvCredentials) GetSecret(id, account string) (string, error) {
	key := strings.ToUpper(strings.ReplaceAll(id, "-", "_")) + "_PASSWORD"
	secret, ok := os.LookupEnv(key)
	if !ok || secret == "" {
		return "", fmt.Errorf("no secret for %s (account %s): environment variable %s is not set", id, account, key)
	}
	return secret, nil
}
