package auth

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/puredelivery/client/api/transport"
	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/internal/gateway"
)

// SessionStore is the slice of the session store the auth flows mutate.
type SessionStore interface {
	SetSession(sessionID string, customer domain.Customer, isEmailConfirmed bool)
	ClearSession()
	SetEmailConfirmed(confirmed bool)
	SetPendingVerificationEmail(email string)
	Session() domain.Session
}

// Gateway is the single chokepoint used for every backend call.
type Gateway interface {
	Request(ctx context.Context, method, path string, opts gateway.Options) (*gateway.Response, error)
	RequestJSON(ctx context.Context, method, path string, payload interface{}) (*gateway.Response, error)
}

// UseCase implements the authentication service surface. Every function
// performs exactly one HTTP call, parses the response envelope and returns
// it verbatim; transport failures are normalized to a synthesized network
// error envelope and never propagate as Go errors.
type UseCase struct {
	api      Gateway
	sessions SessionStore
	logger   *zap.Logger
}

func New(api Gateway, sessions SessionStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate logs the customer in. On success the session store is
// replaced atomically with the returned identity.
func (uc *UseCase) Authenticate(ctx context.Context, req transport.AuthenticateRequest) (transport.Envelope, *transport.AuthResult) {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/login", req)
	if err != nil {
		uc.logger.Warn("authenticate transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var result transport.AuthResult
	if err := env.DecodeData(&result); err != nil {
		uc.logger.Error("authenticate payload decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	customer := domain.Customer{
		ID:       result.CustomerID,
		Email:    result.Email,
		FullName: result.FullName,
	}
	if result.Profile != nil {
		customer.Phone = result.Profile.Phone
		customer.LoyaltyPoints = result.Profile.LoyaltyPoints
	}
	uc.sessions.SetSession(result.SessionID, customer, result.IsEmailConfirmed)

	return env, &result
}

// Register creates a customer account and records the email awaiting
// confirmation.
func (uc *UseCase) Register(ctx context.Context, req transport.CreateCustomerRequest) (transport.Envelope, *transport.RegisterResult) {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/register", req)
	if err != nil {
		uc.logger.Warn("register transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var result transport.RegisterResult
	if err := env.DecodeData(&result); err != nil {
		uc.logger.Error("register payload decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	uc.sessions.SetPendingVerificationEmail(req.Email)
	return env, &result
}

// VerifyOtp confirms email ownership with the one-time code. On success the
// confirmation flag is set and the pending marker cleared.
func (uc *UseCase) VerifyOtp(ctx context.Context, email, otpCode string) transport.Envelope {
	req := transport.VerifyOtpRequest{Email: email, OtpCode: otpCode}
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/confirm-email", req)
	if err != nil {
		uc.logger.Warn("verify otp transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}

	env := transport.ParseEnvelope(resp.Body)
	if env.IsSuccess {
		uc.sessions.SetEmailConfirmed(true)
		uc.sessions.SetPendingVerificationEmail("")
	}
	return env
}

// ResendOtp requests a fresh code for the pending email.
func (uc *UseCase) ResendOtp(ctx context.Context, email string) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/resend-otp", transport.ResendOtpRequest{Email: email})
	if err != nil {
		uc.logger.Warn("resend otp transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// Logout tells the backend to revoke the session and clears the local one
// regardless of the backend's answer.
func (uc *UseCase) Logout(ctx context.Context) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/logout", nil)
	uc.sessions.ClearSession()
	if err != nil {
		uc.logger.Warn("logout transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// RequestPasswordReset asks the backend to send a reset code.
func (uc *UseCase) RequestPasswordReset(ctx context.Context, email string) transport.Envelope {
	req := transport.RequestPasswordResetRequest{Email: email}
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/request-forgot-password", req)
	if err != nil {
		uc.logger.Warn("password reset request transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// ConfirmPasswordReset sets a new password authorized by the reset code.
func (uc *UseCase) ConfirmPasswordReset(ctx context.Context, req transport.ChangePasswordWithOtpRequest) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/change-password-with-otp", req)
	if err != nil {
		uc.logger.Warn("password reset transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// ChangePassword changes the password of the authenticated customer.
func (uc *UseCase) ChangePassword(ctx context.Context, req transport.ChangePasswordRequest) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/auth/change-password", req)
	if err != nil {
		uc.logger.Warn("change password transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// CheckEmailAvailability reports whether an email is free to register.
func (uc *UseCase) CheckEmailAvailability(ctx context.Context, email string) transport.Envelope {
	path := "/auth/email-availability/" + url.PathEscape(email)
	resp, err := uc.api.Request(ctx, http.MethodGet, path, gateway.Options{})
	if err != nil {
		uc.logger.Warn("email availability transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// DeleteAccount removes the customer account and tears the session down on
// success.
func (uc *UseCase) DeleteAccount(ctx context.Context, customerID string) transport.Envelope {
	resp, err := uc.api.Request(ctx, http.MethodDelete, "/auth/"+url.PathEscape(customerID), gateway.Options{})
	if err != nil {
		uc.logger.Warn("delete account transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	env := transport.ParseEnvelope(resp.Body)
	if env.IsSuccess {
		uc.sessions.ClearSession()
	}
	return env
}

// ValidateSession implements session.Validator with a real backend check.
func (uc *UseCase) ValidateSession(ctx context.Context) (bool, error) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/session/validate", gateway.Options{})
	if err != nil {
		return false, err
	}
	env := transport.ParseEnvelope(resp.Body)
	return env.IsSuccess, nil
}
