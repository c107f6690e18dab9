// Package graph is the outbound Messenger Graph API client: message
// sends, app events, personas, messenger profile setup and user profile
// lookup.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/garyellow/coast-messenger-go/internal/config"
	apperrors "github.com/garyellow/coast-messenger-go/internal/errors"
	"github.com/garyellow/coast-messenger-go/internal/logger"
	"github.com/garyellow/coast-messenger-go/internal/messenger"
	"github.com/garyellow/coast-messenger-go/internal/metrics"
	"github.com/garyellow/coast-messenger-go/internal/ratelimit"
)

// DefaultBaseURL is the Graph API root including the platform version.
const DefaultBaseURL = "https://graph.facebook.com/v17.0"

// Options configures a Client.
type Options struct {
	BaseURL         string // defaults to DefaultBaseURL
	PageID          string
	AppID           string
	AppSecret       string
	PageAccessToken string

	MaxRetries int // retried lookups only; sends are never retried

	// RateLimitRPS caps outbound Graph API requests per second across
	// all endpoints. Zero disables throttling.
	RateLimitRPS float64

	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// Client calls the Graph API. Sends are fire-and-forget: a failed send
// is logged and reported as an error return, but never retried. Reads
// (user profile, personas) retry transient errors with backoff.
type Client struct {
	httpClient *http.Client
	opts       Options
	baseURL    string
	limiter    *ratelimit.Limiter
}

// NewClient creates a Graph API client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var limiter *ratelimit.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = ratelimit.New(opts.RateLimitRPS, opts.RateLimitRPS)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.GraphRequest,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:    opts,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: limiter,
	}
}

// Recipient addresses an outbound message. Exactly one field is set:
// ID for known users, UserRef for chat plugin guests,
// NotificationMessagesToken for recurring notification sends.
type Recipient struct {
	ID                        string `json:"id,omitempty"`
	UserRef                   string `json:"user_ref,omitempty"`
	NotificationMessagesToken string `json:"notification_messages_token,omitempty"`
}

// SendRequest is the Send API envelope. PersonaID sits beside the
// message, never inside it.
type SendRequest struct {
	Recipient Recipient          `json:"recipient"`
	Message   *messenger.Message `json:"message"`
	PersonaID string             `json:"persona_id,omitempty"`
}

// SendMessage delivers one message. The message's PersonaID is promoted
// to the envelope here; its Delay has no meaning at this layer.
func (c *Client) SendMessage(ctx context.Context, recipient Recipient, msg *messenger.Message) error {
	req := SendRequest{
		Recipient: recipient,
		Message:   msg,
		PersonaID: msg.PersonaID,
	}

	return c.post(ctx, "me/messages", "messages", c.pageTokenQuery(), req, nil)
}

// UserProfile is the personalization subset of a platform profile.
type UserProfile struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Gender    string      `json:"gender"`
	Locale    string      `json:"locale"`
	Timezone  json.Number `json:"timezone"`
}

// GetUserProfile fetches a user's profile fields. Transient failures
// are retried with backoff; a definitive miss returns ErrNotFound.
func (c *Client) GetUserProfile(ctx context.Context, psid string) (*UserProfile, error) {
	query := c.pageTokenQuery()
	query.Set("fields", "first_name,last_name,gender,locale,timezone")

	var profile UserProfile
	err := RetryWithBackoff(ctx, c.opts.MaxRetries, config.GraphRetryInitial, func() error {
		return c.get(ctx, psid, "user_profile", query, &profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ReportLeadSubmitted reports a lead_submitted custom app event for the
// given user.
func (c *Client) ReportLeadSubmitted(ctx context.Context, psid string) error {
	body := map[string]any{
		"custom_events": []map[string]string{
			{"_eventName": "lead_submitted"},
		},
		"advertiser_tracking_enabled":  1,
		"application_tracking_enabled": 1,
		"page_id":                      c.opts.PageID,
		"page_scoped_user_id":          psid,
		"logging_source":               "messenger_bot",
		"logging_target":               "page",
	}

	endpoint := c.opts.AppID + "/page_activities"
	return c.post(ctx, endpoint, "app_events", c.pageTokenQuery(), body, nil)
}

// Persona is a platform persona registered for the page.
type Persona struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// ListPersonas returns the personas already registered for the page.
func (c *Client) ListPersonas(ctx context.Context) ([]Persona, error) {
	var result struct {
		Data []Persona `json:"data"`
	}

	err := RetryWithBackoff(ctx, c.opts.MaxRetries, config.GraphRetryInitial, func() error {
		return c.get(ctx, "me/personas", "personas", c.pageTokenQuery(), &result)
	})
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// CreatePersona registers a persona and returns its id.
func (c *Client) CreatePersona(ctx context.Context, name, pictureURL string) (string, error) {
	body := map[string]string{
		"name":                name,
		"profile_picture_url": pictureURL,
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "me/personas", "personas", c.pageTokenQuery(), body, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// SetMessengerProfile applies greeting/get-started/persistent-menu or
// whitelisted-domain settings.
func (c *Client) SetMessengerProfile(ctx context.Context, payload any) error {
	return c.post(ctx, "me/messenger_profile", "messenger_profile", c.pageTokenQuery(), payload, nil)
}

// subscriptionFields is what the webhook subscribes to.
const subscriptionFields = "messages, messaging_postbacks, messaging_optins, " +
	"message_deliveries, messaging_referrals"

// SetSubscription points the app's page subscription at callbackURL.
// Uses the app token (app id|secret), not the page token.
func (c *Client) SetSubscription(ctx context.Context, callbackURL, verifyToken string) error {
	query := url.Values{}
	query.Set("access_token", c.opts.AppID+"|"+c.opts.AppSecret)
	query.Set("object", "page")
	query.Set("callback_url", callbackURL)
	query.Set("verify_token", verifyToken)
	query.Set("fields", subscriptionFields)
	query.Set("include_values", "true")

	return c.post(ctx, c.opts.AppID+"/subscriptions", "subscriptions", query, nil, nil)
}

// SubscribeApp subscribes the app to the page's messaging fields.
func (c *Client) SubscribeApp(ctx context.Context) error {
	query := c.pageTokenQuery()
	query.Set("subscribed_fields", subscriptionFields)

	return c.post(ctx, c.opts.PageID+"/subscribed_apps", "subscribed_apps", query, nil, nil)
}

// EnableBuiltinNLP turns on built-in NLP so greetings arrive annotated.
func (c *Client) EnableBuiltinNLP(ctx context.Context) error {
	query := c.pageTokenQuery()
	query.Set("nlp_enabled", "true")

	return c.post(ctx, "me/nlp_configs", "nlp_configs", query, nil, nil)
}

func (c *Client) pageTokenQuery() url.Values {
	query := url.Values{}
	query.Set("access_token", c.opts.PageAccessToken)
	return query
}

// post issues a POST with an optional JSON body and decodes the
// response into out when non-nil.
func (c *Client) post(ctx context.Context, endpoint, metricName string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
		}
		reader = bytes.NewReader(encoded)
	}

	return c.do(ctx, http.MethodPost, endpoint, metricName, query, reader, out)
}

func (c *Client) get(ctx context.Context, endpoint, metricName string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, metricName, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint, metricName string, query url.Values, body io.Reader, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait for %s: %w", endpoint, err)
		}
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.record(metricName, "error", duration)
		c.logWarn(ctx, endpoint, 0, err)
		return apperrors.NewGraphError(endpoint, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.record(metricName, "error", duration)

		// Read a bounded slice of the error body for the log line.
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		c.logWarn(ctx, endpoint, resp.StatusCode, statusErr)

		if resp.StatusCode == http.StatusNotFound {
			return apperrors.NewGraphError(endpoint, resp.StatusCode, apperrors.ErrNotFound)
		}
		err := apperrors.NewGraphError(endpoint, resp.StatusCode, statusErr)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return Permanent(err)
		}
		return err
	}

	c.record(metricName, "success", duration)

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

func (c *Client) record(endpoint, status string, duration time.Duration) {
	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordGraphRequest(endpoint, status, duration.Seconds())
	}
}

func (c *Client) logWarn(ctx context.Context, endpoint string, status int, err error) {
	if c.opts.Logger != nil {
		c.opts.Logger.WarnContext(ctx, "graph api call failed",
			"endpoint", endpoint,
			"status", status,
			"error", err)
	}
}
