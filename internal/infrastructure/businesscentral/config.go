package businesscentral

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultAPIBaseURL is the Business Central API root
	DefaultAPIBaseURL = "https://api.businesscentral.dynamics.com"
	// DefaultTokenURL is the identity provider token endpoint; {tenant} is substituted
	DefaultTokenURL = "https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token"
	// DefaultScope requests the application permissions granted to the client
	DefaultScope = "https://api.businesscentral.dynamics.com/.default"

	DefaultEnvironment  = "Production"
	DefaultAPIPublisher = "melcon"
	DefaultAPIGroup     = "purchasing"
	DefaultAPIVersion   = "v2.0"
	DefaultTimeout      = 30 * time.Second

	// DefaultMaxResponseSize caps order, archive and vendor collection bodies
	DefaultMaxResponseSize int64 = 10 << 20
	// DefaultMaxDocumentResponseSize caps purchaseOrderPdfs bodies, which carry base64 documents
	DefaultMaxDocumentResponseSize int64 = 64 << 20
)

// ErrInvalidConfig is returned when the adapter configuration is incomplete
var ErrInvalidConfig = errors.New("businesscentral: invalid configuration")

// Config holds the connection settings for the Business Central custom API
type Config struct {
	// TenantID is the directory tenant that owns the Business Central instance
	TenantID string `validate:"required"`
	// ClientID and ClientSecret are the app registration credentials
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	// CompanyID is the Business Central company identifier
	CompanyID string `validate:"required"`
	// Environment is tried first; the standard environments are tried after it
	Environment string

	APIPublisher string `validate:"required"`
	APIGroup     string `validate:"required"`
	APIVersion   string `validate:"required"`

	APIBaseURL string        `validate:"required,url"`
	TokenURL   string        `validate:"required"`
	Scope      string        `validate:"required"`
	Timeout    time.Duration `validate:"gt=0"`

	// ExpandOrderLines asks the API to embed purchaseOrderLines in order lookups
	ExpandOrderLines bool

	MaxResponseSize         int64
	MaxDocumentResponseSize int64
}

// NewConfig creates a configuration with defaults for everything but credentials
func NewConfig(tenantID, clientID, clientSecret, companyID string) *Config {
	cfg := &Config{
		TenantID:     tenantID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		CompanyID:    companyID,
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = DefaultEnvironment
	}
	if c.APIPublisher == "" {
		c.APIPublisher = DefaultAPIPublisher
	}
	if c.APIGroup == "" {
		c.APIGroup = DefaultAPIGroup
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.Scope == "" {
		c.Scope = DefaultScope
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = DefaultMaxResponseSize
	}
	if c.MaxDocumentResponseSize <= 0 {
		c.MaxDocumentResponseSize = DefaultMaxDocumentResponseSize
	}
}

// responseLimit returns the largest body accepted for resource
func (c *Config) responseLimit(resource Resource) int64 {
	if resource == ResourcePurchaseOrderPdfs {
		return c.MaxDocumentResponseSize
	}
	return c.MaxResponseSize
}

// Validate fills in defaults and checks that the configuration is usable
func (c *Config) Validate() error {
	c.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// tokenEndpoint returns the token URL for the configured tenant
func (c *Config) tokenEndpoint() string {
	return strings.ReplaceAll(c.TokenURL, "{tenant}", url.PathEscape(c.TenantID))
}

// resourceURL returns the collection URL of resource in environment, without query
func (c *Config) resourceURL(environment string, resource Resource) string {
	return fmt.Sprintf("%s/v2.0/%s/%s/api/%s/%s/%s/companies(%s)/%s",
		strings.TrimRight(c.APIBaseURL, "/"),
		url.PathEscape(c.TenantID),
		url.PathEscape(environment),
		c.APIPublisher,
		c.APIGroup,
		c.APIVersion,
		c.CompanyID,
		resource,
	)
}
