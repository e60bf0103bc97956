package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "autoapply"

// ReauthTokenEnv is consulted by Reauthorize: a headless run can't pop a
// browser, so the operator supplies a fresh token blob out of band.
const ReauthTokenEnv = "AUTOAPPLY_CALENDAR_TOKEN"

// CredentialProvider is the injected capability the scheduler depends on.
// It replaces the usual process-wide mutable token singleton.
type CredentialProvider interface {
	IsValid() bool
	Refresh() error
	Reauthorize() error
	Token() string
}

// TokenBlob is the cached credential; the blob's format is opaque to the
// rest of the engine.
type TokenBlob struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// KeyringCredentials caches the token blob in the OS keychain under
// (KeyringService, Account) and refreshes it against the provider's token
// endpoint.
type KeyringCredentials struct {
	Account  string
	TokenURL string

	mu     sync.Mutex
	hc     *http.Client
	now    func() time.Time
	blob   TokenBlob
	loaded bool
}

func NewKeyringCredentials(account, tokenURL string) *KeyringCredentials {
	return &KeyringCredentials{
		Account:  account,
		TokenURL: tokenURL,
		hc:       &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

func (k *KeyringCredentials) load() {
	if k.loaded {
		return
	}
	k.loaded = true
	raw, err := keyring.Get(KeyringService, k.Account)
	if err != nil || strings.TrimSpace(raw) == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), &k.blob)
}

func (k *KeyringCredentials) store() error {
	b, err := json.Marshal(k.blob)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, k.Account, string(b))
}

func (k *KeyringCredentials) IsValid() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.load()
	if k.blob.AccessToken == "" {
		return false
	}
	// treat a token within a minute of expiry as already expired
	return k.now().Add(time.Minute).Before(k.blob.Expiry)
}

// Refresh trades the cached refresh token for a new access token and writes
// the updated blob back to the keychain.
func (k *KeyringCredentials) Refresh() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.load()

	if k.blob.RefreshToken == "" {
		return errors.New("calendar credentials: no refresh token cached")
	}
	if k.TokenURL == "" {
		return errors.New("calendar credentials: token_url not configured")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", k.blob.RefreshToken)

	res, err := k.hc.PostForm(k.TokenURL, form)
	if err != nil {
		return fmt.Errorf("calendar token refresh: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return fmt.Errorf("calendar token refresh: status %d", res.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("calendar token refresh decode: %w", err)
	}
	if body.AccessToken == "" {
		return errors.New("calendar token refresh: empty access token")
	}

	k.blob.AccessToken = body.AccessToken
	k.blob.Expiry = k.now().Add(time.Duration(body.ExpiresIn) * time.Second)
	if err := k.store(); err != nil {
		return fmt.Errorf("calendar token cache: %w", err)
	}
	return nil
}

// Reauthorize adopts an operator-supplied token blob when refresh is no
// longer possible. Failure here only costs the follow-up reminder; it never
// blocks customization or the ledger append.
func (k *KeyringCredentials) Reauthorize() error {
	raw := strings.TrimSpace(os.Getenv(ReauthTokenEnv))
	if raw == "" {
		return fmt.Errorf("calendar credentials expired: set %s to re-authorize", ReauthTokenEnv)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	var blob TokenBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		return fmt.Errorf("calendar reauthorize: bad token blob: %w", err)
	}
	if blob.AccessToken == "" {
		return errors.New("calendar reauthorize: token blob has no access token")
	}
	if blob.Expiry.IsZero() {
		blob.Expiry = k.now().Add(time.Hour)
	}
	k.blob = blob
	k.loaded = true
	if err := k.store(); err != nil {
		return fmt.Errorf("calendar token cache: %w", err)
	}
	return nil
}

func (k *KeyringCredentials) Token() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.load()
	return k.blob.AccessToken
}
