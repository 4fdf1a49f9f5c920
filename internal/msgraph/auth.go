package msgraph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/stt/internal/storage"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// AuthConfig identifies the Azure app and where its token is cached.
type AuthConfig struct {
	TenantID  string
	ClientID  string
	TokenPath string
}

// DefaultTokenPath returns ~/.stt/auth/msgraph_tokens.json.
func DefaultTokenPath() (string, error) {
	base, err := storage.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "auth", "msgraph_tokens.json"), nil
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken returns the cached token, or nil if there is none.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := sonic.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := sonic.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticate returns a usable token for Microsoft Graph. It uses the cached
// token, refreshes it if needed, or runs the device code flow, printing the
// sign-in instructions to prompt.
func Authenticate(ctx context.Context, ac AuthConfig, prompt io.Writer, log *slog.Logger) (*oauth2.Token, *oauth2.Config, error) {
	cfg := oauth2Config(ac.TenantID, ac.ClientID)

	tok, err := loadToken(ac.TokenPath)
	if err != nil {
		log.Warn("ignoring cached token", "err", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, cfg, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := saveToken(ac.TokenPath, refreshed); err != nil {
				log.Warn("could not save refreshed token", "err", err)
			}
			return refreshed, cfg, nil
		}
		log.Info("token refresh failed, re-authenticating", "err", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(prompt)
	fmt.Fprintln(prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(prompt)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := saveToken(ac.TokenPath, newTok); err != nil {
		log.Warn("could not save token", "err", err)
	}

	return newTok, cfg, nil
}
