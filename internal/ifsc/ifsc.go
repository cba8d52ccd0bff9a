// Package ifsc checks Indian Financial System Codes against the public
// Razorpay IFSC directory.
//
// Codes are validated locally first (four letters, a zero, then six letters
// or digits) and then looked up with a single request. The lookup never
// retries.
package ifsc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"challan-service/pkg/errors"
	"challan-service/pkg/logger"
)

// DefaultBaseURL is the public IFSC directory
const DefaultBaseURL = "https://ifsc.razorpay.com"

// DefaultTimeout bounds a single lookup
const DefaultTimeout = 5 * time.Second

// maxResponseSize limits how much of a response body is read
const maxResponseSize = 64 * 1024

var codePattern = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)

// Status is the outcome of a lookup
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of one lookup. Data holds the directory record when
// one was returned.
type Result struct {
	Code    string                 `json:"code"`
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// Bank returns the bank name from the directory record
func (r *Result) Bank() string {
	if bank, ok := r.Data["BANK"].(string); ok && bank != "" {
		return bank
	}
	return "Unknown Bank"
}

// Normalize upper-cases and trims a code
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateFormat reports whether code has the IFSC shape
func ValidateFormat(code string) bool {
	return codePattern.MatchString(Normalize(code))
}

// Config holds lookup client settings
type Config struct {
	BaseURL string        `json:"base_url"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the public directory with a five second timeout
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL must be http or https, got %s", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Client looks codes up in the IFSC directory
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// NewClient creates a Client; a nil config uses DefaultConfig
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "ifsc", config.BaseURL, err)
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		http:    &http.Client{Timeout: config.Timeout},
		logger:  logger.GetGlobalLogger().WithComponent("ifsc"),
	}, nil
}

// Lookup validates code and fetches its directory record. The returned
// Result is never nil once the format check passes; on failure it carries the
// same message as the returned error.
func (c *Client) Lookup(ctx context.Context, code string) (*Result, error) {
	code = Normalize(code)
	if !codePattern.MatchString(code) {
		return nil, errors.ValidationError(errors.CodeInvalidIdentifier, "ifsc", code, nil).
			WithSuggestion("an IFSC is 4 letters, the digit 0, then 6 letters or digits (e.g. SBIN0001234)")
	}

	url := c.baseURL + "/" + code
	log := c.logger.WithField("code", code)
	result := &Result{Code: code, Status: StatusError}

	fail := func(errCode errors.ErrorCode, message string, cause error) (*Result, error) {
		result.Message = message
		log.WithField("reason", errCode).Debug("IFSC lookup failed")
		return result, errors.NetworkError(errCode, url, message, cause)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(errors.CodeConnectionFailed, fmt.Sprintf("Connection error: %v", err), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if os.IsTimeout(err) || ctx.Err() == context.DeadlineExceeded {
			return fail(errors.CodeTimeout, "Request timed out while contacting the API.", err)
		}
		return fail(errors.CodeConnectionFailed, fmt.Sprintf("Connection error: %v", err), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fail(errors.CodeNotFound, "IFSC code not found in the database.", nil)
	case resp.StatusCode != http.StatusOK:
		return fail(errors.CodeServiceUnavailable, fmt.Sprintf("API connection error: Status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		if os.IsTimeout(err) {
			return fail(errors.CodeTimeout, "Request timed out while contacting the API.", err)
		}
		return fail(errors.CodeConnectionFailed, fmt.Sprintf("Connection error: %v", err), err)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return fail(errors.CodeInvalidData, "IFSC code found, but returned invalid/empty data.", err)
	}
	result.Data = data

	if found, _ := data["IFSC"].(string); found != code {
		return fail(errors.CodeInvalidData, "IFSC code found, but returned invalid/empty data.", nil)
	}

	result.Status = StatusSuccess
	result.Message = fmt.Sprintf("IFSC code found for %s.", result.Bank())
	log.WithField("bank", result.Bank()).Debug("IFSC lookup succeeded")
	return result, nil
}
