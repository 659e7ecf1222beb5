package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 20, cfg.Screens.DefaultPageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Screens.SearchDebounce)
	assert.Equal(t, 4*time.Second, cfg.Screens.NotificationTTL)
	assert.Equal(t, "UTC", cfg.DefaultTZName)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "./exports", cfg.Exports.Dir)
	assert.Equal(t, time.Hour, cfg.Exports.LinkTTL)
}

func TestOverridesAndFallbacks(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DEFAULT_PAGE_SIZE", 0)
	v.Set("SEARCH_DEBOUNCE", "not-a-duration")
	v.Set("NOTIFICATION_TTL", "2s")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	cfg := fromViper(v)

	assert.Equal(t, 20, cfg.Screens.DefaultPageSize)
	assert.Equal(t, 300*time.Millisecond, cfg.Screens.SearchDebounce)
	assert.Equal(t, 2*time.Second, cfg.Screens.NotificationTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
