package mercadopago

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"plata/internal/domain/connection"
)

const (
	defaultAuthBaseURL = "https://auth.mercadopago.com.ar"
	defaultAPIBaseURL  = "https://api.mercadopago.com"
	defaultTimeout     = 10 * time.Second

	authorizationScope = "read write"

	tokenPath     = "/oauth/token"
	userInfoPath  = "/users/me"
	paymentsPath  = "/v1/payments/search"
	movementsPath = "/v1/account/movements/search"
)

// retry policy for GET resource calls. Token grants are never retried: an
// authorization code is single-use and a duplicated refresh can race a
// rotation.
const (
	retryAttempts = 3
	retryBase     = 500 * time.Millisecond
)

// Config carries the OAuth application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Client talks to the Mercado Pago OAuth and REST endpoints and normalizes
// every failure into a classified connection error.
type Client struct {
	httpClient   *http.Client
	authBaseURL  string
	apiBaseURL   string
	clientID     string
	clientSecret string
	redirectURI  string
}

// Ensure Client implements the provider interface
var _ connection.ProviderClient = (*Client)(nil)

// NewClient creates a new Mercado Pago API client
func NewClient(cfg Config) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		authBaseURL:  defaultAuthBaseURL,
		apiBaseURL:   defaultAPIBaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURI:  cfg.RedirectURI,
	}
}

// AuthorizationURL builds the consent redirect target.
func (c *Client) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", authorizationScope)
	if state != "" {
		q.Set("state", state)
	}
	return c.authBaseURL + "/authorization?" + q.Encode()
}

// tokenResponse is the provider's token grant payload.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       int64  `json:"user_id"`
}

// errorResponse is the provider's error payload shape.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ExchangeCode trades an authorization code for a token pair. Never retried:
// codes are single-use.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*connection.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	return c.tokenGrant(ctx, form, connection.KindCodeExchangeFailed)
}

// Refresh mints a new access token from a refresh token. Never retried.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*connection.TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("refresh_token", refreshToken)

	return c.tokenGrant(ctx, form, connection.KindRefreshFailed)
}

func (c *Client) tokenGrant(ctx context.Context, form url.Values, failureKind connection.Kind) (*connection.TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &connection.Error{Kind: failureKind, Message: "building token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &connection.Error{Kind: connection.KindTransient, Message: "token request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &connection.Error{Kind: connection.KindTransient, Message: "reading token response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		cerr := classify(resp.StatusCode, body, failureKind)
		// A 401/403 on a grant means the code or refresh token was bad, not
		// the access token; KindUnauthorized is reserved for resource calls.
		if cerr.Kind == connection.KindUnauthorized {
			cerr.Kind = failureKind
		}
		return nil, cerr
	}

	var grant tokenResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, &connection.Error{Kind: failureKind, HTTPStatus: resp.StatusCode, Message: "malformed token response", Err: err}
	}
	if grant.AccessToken == "" {
		return nil, &connection.Error{Kind: failureKind, HTTPStatus: resp.StatusCode, Message: "token response missing access token"}
	}

	return &connection.TokenResponse{
		AccessToken:    grant.AccessToken,
		RefreshToken:   grant.RefreshToken,
		TokenType:      grant.TokenType,
		Scope:          grant.Scope,
		ExpiresIn:      grant.ExpiresIn,
		ProviderUserID: grant.UserID,
	}, nil
}

// UserInfo fetches the connected account's profile.
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*connection.UserInfo, error) {
	var payload struct {
		ID        int64  `json:"id"`
		Nickname  string `json:"nickname"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := c.getJSON(ctx, userInfoPath, nil, accessToken, &payload); err != nil {
		return nil, err
	}
	return &connection.UserInfo{
		ID:        payload.ID,
		Nickname:  payload.Nickname,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
	}, nil
}

// SearchPayments fetches a page of the account's received payments.
func (c *Client) SearchPayments(ctx context.Context, accessToken string, limit, offset int) (*connection.PaymentsPage, error) {
	var payload struct {
		Results []struct {
			ID                int64     `json:"id"`
			TransactionAmount float64   `json:"transaction_amount"`
			Description       string    `json:"description"`
			DateCreated       time.Time `json:"date_created"`
			Status            string    `json:"status"`
			PaymentTypeID     string    `json:"payment_type_id"`
			PaymentMethodID   string    `json:"payment_method_id"`
			ExternalReference string    `json:"external_reference"`
		} `json:"results"`
		Paging struct {
			Total  int `json:"total"`
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		} `json:"paging"`
	}
	if err := c.getJSON(ctx, paymentsPath, pageQuery(limit, offset), accessToken, &payload); err != nil {
		return nil, err
	}

	page := &connection.PaymentsPage{
		Results: make([]connection.Payment, 0, len(payload.Results)),
		Paging: connection.Paging{
			Total:  payload.Paging.Total,
			Limit:  payload.Paging.Limit,
			Offset: payload.Paging.Offset,
		},
	}
	for _, r := range payload.Results {
		page.Results = append(page.Results, connection.Payment{
			ID:                r.ID,
			Amount:            r.TransactionAmount,
			Description:       r.Description,
			DateCreated:       r.DateCreated,
			Status:            r.Status,
			PaymentTypeID:     r.PaymentTypeID,
			PaymentMethodID:   r.PaymentMethodID,
			ExternalReference: r.ExternalReference,
		})
	}
	return page, nil
}

// SearchMovements fetches a page of account movements.
func (c *Client) SearchMovements(ctx context.Context, accessToken string, limit, offset int) (*connection.MovementsPage, error) {
	var payload struct {
		Results []json.RawMessage `json:"results"`
		Paging  struct {
			Total  int `json:"total"`
			Limit  int `json:"limit"`
			Offset int `json:"offset"`
		} `json:"paging"`
	}
	if err := c.getJSON(ctx, movementsPath, pageQuery(limit, offset), accessToken, &payload); err != nil {
		return nil, err
	}

	page := &connection.MovementsPage{
		Results: make([]connection.RawMovement, 0, len(payload.Results)),
		Paging: connection.Paging{
			Total:  payload.Paging.Total,
			Limit:  payload.Paging.Limit,
			Offset: payload.Paging.Offset,
		},
	}
	for _, raw := range payload.Results {
		var m struct {
			ID          int64     `json:"id"`
			Type        string    `json:"type"`
			Amount      float64   `json:"amount"`
			Description string    `json:"description"`
			DateCreated time.Time `json:"date_created"`
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			// Skip entries the provider shaped unexpectedly; categorization
			// is best-effort and must not fail the page.
			continue
		}
		page.Results = append(page.Results, connection.RawMovement{
			ID:          m.ID,
			Type:        m.Type,
			Amount:      m.Amount,
			Description: m.Description,
			CreatedAt:   m.DateCreated,
			Raw:         raw,
		})
	}
	return page, nil
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

// getJSON performs an authorized GET with bounded exponential backoff on
// transient failures.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, accessToken string, out interface{}) error {
	endpoint := c.apiBaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("building request for %s: %w", path, err)
		}
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(&connection.Error{Kind: connection.KindTransient, Message: "request to " + path + " failed", Err: err})
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(&connection.Error{Kind: connection.KindTransient, Message: "reading response from " + path, Err: err})
		}

		if resp.StatusCode != http.StatusOK {
			cerr := classify(resp.StatusCode, body, connection.KindTransient)
			if cerr.Kind.Retryable() {
				return retry.RetryableError(cerr)
			}
			return cerr
		}

		if err := json.Unmarshal(body, out); err != nil {
			return &connection.Error{Kind: connection.KindTransient, HTTPStatus: resp.StatusCode, Message: "malformed response from " + path, Err: err}
		}
		return nil
	})
}

// classify maps a provider HTTP failure onto the local error taxonomy.
// fallbackKind is used for 4xx statuses that carry flow-specific meaning
// (failed exchange vs failed refresh).
func classify(status int, body []byte, fallbackKind connection.Kind) *connection.Error {
	var payload errorResponse
	_ = json.Unmarshal(body, &payload)

	message := payload.Message
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	kind := fallbackKind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = connection.KindUnauthorized
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		kind = connection.KindTransient
	}

	return &connection.Error{
		Kind:         kind,
		HTTPStatus:   status,
		ProviderCode: payload.Error,
		Message:      message,
	}
}
