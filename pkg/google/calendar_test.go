package google

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecocal/ecocal/internal/config"
	"github.com/ecocal/ecocal/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
)

func writeTokenFile(path string, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}

func TestNewCalendarEvent(t *testing.T) {
	// given
	e := event.Event{
		OccursAt: time.Date(2025, 2, 13, 8, 30, 0, 0, time.UTC),
		Summary:  "Initial Jobless Claims",
		Country:  "US",
		Level:    3,
	}

	// when
	body := newCalendarEvent(e)

	// then
	assert.Equal(t, "Initial Jobless Claims", body.Summary)
	assert.Equal(t, "Economic event from Trading Economics\nImportance: Level 3", body.Description)
	assert.Equal(t, "2025-02-13T08:30:00Z", body.Start.DateTime)
	assert.Equal(t, "2025-02-13T08:35:00Z", body.End.DateTime)
}

func TestNewCalendarEvent_NormalizesToUTC(t *testing.T) {
	// given
	berlin := time.FixedZone("CET", 3600)
	e := event.Event{
		OccursAt: time.Date(2025, 2, 13, 9, 30, 0, 0, berlin),
		Summary:  "GDP Growth Rate QoQ",
		Level:    2,
	}

	// when
	body := newCalendarEvent(e)

	// then
	assert.Equal(t, "2025-02-13T08:30:00Z", body.Start.DateTime)
}

func TestOAuthConfig(t *testing.T) {
	// given
	cfg := config.Google{
		ClientId:     "client-id",
		ClientSecret: "client-secret",
	}

	// when
	oauthConfig := OAuthConfig(cfg)

	// then
	assert.Equal(t, "client-id", oauthConfig.ClientID)
	assert.Equal(t, "client-secret", oauthConfig.ClientSecret)
	assert.Equal(t, []string{gcal.CalendarEventsScope}, oauthConfig.Scopes)
}

func TestSaveAndLoadToken(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "oauth-token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Date(2025, 2, 13, 12, 0, 0, 0, time.UTC),
	}

	// when
	err := SaveToken(path, token)

	// then
	require.NoError(t, err)
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)
	assert.Equal(t, "Bearer", loaded.TokenType)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestLoadToken_MissingFile(t *testing.T) {
	// when
	_, err := LoadToken(filepath.Join(t.TempDir(), "does-not-exist.json"))

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read token file")
}

func TestLoadToken_InvalidJson(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "oauth-token.json")
	require.NoError(t, writeTokenFile(path, "not json"))

	// when
	_, err := LoadToken(path)

	// then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token file")
}
