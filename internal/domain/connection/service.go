package connection

import (
	"context"
	"fmt"
	"time"
)

// Service is the token lifecycle manager. It owns every write to the token
// store: handlers and other services only read connection state through it.
type Service struct {
	tokens     TokenRepository
	provider   ProviderClient
	configured bool
	now        func() time.Time
}

// NewService creates the lifecycle manager. configured reports whether the
// provider credentials are present; when false every connect operation fails
// with a configuration error instead of contacting the provider.
func NewService(tokens TokenRepository, provider ProviderClient, configured bool) *Service {
	return &Service{
		tokens:     tokens,
		provider:   provider,
		configured: configured,
		now:        time.Now,
	}
}

// Configured reports whether provider credentials are present.
func (s *Service) Configured() bool {
	return s.configured
}

// AuthorizationURL builds the provider consent URL for a connect attempt.
func (s *Service) AuthorizationURL(state string) (string, error) {
	if !s.configured {
		return "", NewError(KindConfiguration, "provider integration is not configured")
	}
	return s.provider.AuthorizationURL(state), nil
}

// ExchangeCode trades an authorization code for a token pair and persists it,
// replacing any previous record for the user. Codes are single-use: a
// rejected code is never retried here, the user must restart the connect
// flow.
func (s *Service) ExchangeCode(ctx context.Context, userID int64, code string) (*TokenRecord, error) {
	if !s.configured {
		return nil, NewError(KindConfiguration, "provider integration is not configured")
	}
	if code == "" {
		return nil, NewError(KindCodeExchangeFailed, "missing authorization code")
	}

	resp, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &TokenRecord{
		UserID:         userID,
		ProviderUserID: resp.ProviderUserID,
		AccessToken:    resp.AccessToken,
		RefreshToken:   resp.RefreshToken,
		TokenType:      resp.TokenType,
		Scope:          resp.Scope,
		ExpiresAt:      now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Older provider apps omit the account id from the token response; fall
	// back to the profile endpoint, best effort.
	if record.ProviderUserID == 0 {
		if info, err := s.provider.UserInfo(ctx, record.AccessToken); err == nil {
			record.ProviderUserID = info.ID
		}
	}

	if err := s.tokens.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("persisting token record: %w", err)
	}
	return record, nil
}

// Disconnect deletes the user's token record. Disconnecting when no record
// exists succeeds.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	if err := s.tokens.Delete(ctx, userID); err != nil {
		return fmt.Errorf("deleting token record: %w", err)
	}
	return nil
}

// Status reports the connection state for the dashboard without contacting
// the provider.
func (s *Service) Status(ctx context.Context, userID int64) (*Status, error) {
	status := &Status{Configured: s.configured}

	record, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading token record: %w", err)
	}
	if record == nil {
		return status, nil
	}

	expiresAt := record.ExpiresAt
	status.Connected = true
	status.ProviderUserID = record.ProviderUserID
	status.ExpiresAt = &expiresAt
	return status, nil
}

// Profile fetches the provider account profile for the user.
func (s *Service) Profile(ctx context.Context, userID int64) (*UserInfo, error) {
	var out *UserInfo
	err := s.withToken(ctx, userID, func(token string) error {
		info, err := s.provider.UserInfo(ctx, token)
		if err != nil {
			return err
		}
		out = info
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Payments fetches a page of the user's provider payment history.
func (s *Service) Payments(ctx context.Context, userID int64, limit, offset int) (*PaymentsPage, error) {
	var out *PaymentsPage
	err := s.withToken(ctx, userID, func(token string) error {
		page, err := s.provider.SearchPayments(ctx, token, limit, offset)
		if err != nil {
			return err
		}
		out = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Movements fetches a page of the user's provider account movements.
func (s *Service) Movements(ctx context.Context, userID int64, limit, offset int) (*MovementsPage, error) {
	var out *MovementsPage
	err := s.withToken(ctx, userID, func(token string) error {
		page, err := s.provider.SearchMovements(ctx, token, limit, offset)
		if err != nil {
			return err
		}
		out = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withToken resolves a usable access token, runs call, and handles the
// provider disagreeing with local state: a call rejected as unauthorized
// triggers exactly one forced refresh and retry. A second rejection is
// treated as a failed refresh and deletes the record.
func (s *Service) withToken(ctx context.Context, userID int64, call func(token string) error) error {
	token, err := s.ensureAuthorized(ctx, userID, false)
	if err != nil {
		return err
	}

	err = call(token)
	if KindOf(err) != KindUnauthorized {
		return err
	}

	token, err = s.ensureAuthorized(ctx, userID, true)
	if err != nil {
		return err
	}

	err = call(token)
	if KindOf(err) == KindUnauthorized {
		if delErr := s.tokens.Delete(ctx, userID); delErr != nil {
			return fmt.Errorf("deleting token record after rejected refresh: %w", delErr)
		}
		return &Error{Kind: KindRefreshFailed, Message: "token rejected after refresh, reconnect required", Err: err}
	}
	return err
}

// ensureAuthorized returns an access token for the user, refreshing it when
// expired (or unconditionally when force is set). Terminal refresh outcomes
// delete the record so no stale credentials linger; transient failures never
// do.
func (s *Service) ensureAuthorized(ctx context.Context, userID int64, force bool) (string, error) {
	if !s.configured {
		return "", NewError(KindConfiguration, "provider integration is not configured")
	}

	record, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("loading token record: %w", err)
	}
	if record == nil {
		return "", NewError(KindNotConnected, "no provider connection for this user")
	}

	if !force && !record.Expired(s.now()) {
		return record.AccessToken, nil
	}

	if record.RefreshToken == "" {
		if err := s.tokens.Delete(ctx, userID); err != nil {
			return "", fmt.Errorf("deleting expired token record: %w", err)
		}
		return "", NewError(KindTokenExpiredNoRefresh, "access token expired and no refresh token is stored, reconnect required")
	}

	resp, err := s.provider.Refresh(ctx, record.RefreshToken)
	if err != nil {
		if KindOf(err).Retryable() {
			// Transient failure: keep the record, the next request retries.
			return "", err
		}
		if delErr := s.tokens.Delete(ctx, userID); delErr != nil {
			return "", fmt.Errorf("deleting token record after failed refresh: %w", delErr)
		}
		return "", &Error{Kind: KindRefreshFailed, Message: "provider rejected the refresh, reconnect required", Err: err}
	}

	now := s.now().UTC()
	record.AccessToken = resp.AccessToken
	// Rotation is optional: keep the previous refresh token when the
	// provider omits one.
	if resp.RefreshToken != "" {
		record.RefreshToken = resp.RefreshToken
	}
	if resp.TokenType != "" {
		record.TokenType = resp.TokenType
	}
	if resp.Scope != "" {
		record.Scope = resp.Scope
	}
	if resp.ProviderUserID != 0 {
		record.ProviderUserID = resp.ProviderUserID
	}
	record.ExpiresAt = now.Add(time.Duration(resp.ExpiresIn) * time.Second)
	record.UpdatedAt = now

	if err := s.tokens.Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("persisting refreshed token record: %w", err)
	}
	return record.AccessToken, nil
}
