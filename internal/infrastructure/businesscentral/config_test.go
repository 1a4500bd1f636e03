package businesscentral

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("t", "c", "s", "co")

	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, "melcon", cfg.APIPublisher)
	assert.Equal(t, "purchasing", cfg.APIGroup)
	assert.Equal(t, "v2.0", cfg.APIVersion)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultMaxResponseSize, cfg.MaxResponseSize)
	assert.Equal(t, DefaultMaxDocumentResponseSize, cfg.MaxDocumentResponseSize)
	assert.False(t, cfg.ExpandOrderLines)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing tenant", func(c *Config) { c.TenantID = "" }, "TenantID"},
		{"missing client id", func(c *Config) { c.ClientID = "" }, "ClientID"},
		{"missing secret", func(c *Config) { c.ClientSecret = "" }, "ClientSecret"},
		{"missing company", func(c *Config) { c.CompanyID = "" }, "CompanyID"},
		{"bad base url", func(c *Config) { c.APIBaseURL = "not a url" }, "APIBaseURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("t", "c", "s", "co")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("blank optional fields are defaulted", func(t *testing.T) {
		cfg := &Config{TenantID: "t", ClientID: "c", ClientSecret: "s", CompanyID: "co", Environment: "  "}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, DefaultEnvironment, cfg.Environment)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
	})
}

func TestConfig_URLs(t *testing.T) {
	cfg := NewConfig("contoso.onmicrosoft.com", "c", "s", "1234")
	cfg.APIBaseURL = "https://bc.example.com/"

	assert.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", cfg.tokenEndpoint())
	assert.Equal(t,
		"https://bc.example.com/v2.0/contoso.onmicrosoft.com/Sandbox/api/melcon/purchasing/v2.0/companies(1234)/purchaseOrderPdfs",
		cfg.resourceURL("Sandbox", ResourcePurchaseOrderPdfs),
	)
}
