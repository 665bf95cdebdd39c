package profile

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/puredelivery/client/api/transport"
	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/internal/gateway"
)

// SessionStore is the slice of the session store the profile flows mutate.
type SessionStore interface {
	UpdateCustomer(update domain.CustomerUpdate)
}

// Gateway is the single chokepoint used for every backend call.
type Gateway interface {
	Request(ctx context.Context, method, path string, opts gateway.Options) (*gateway.Response, error)
	RequestJSON(ctx context.Context, method, path string, payload interface{}) (*gateway.Response, error)
}

// UseCase implements the profile service surface: one HTTP call per
// function, envelope returned verbatim, transport failures normalized.
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

// GetCustomerWithProfile fetches the account record with its profile.
func (uc *UseCase) GetCustomerWithProfile(ctx context.Context, customerID string) (transport.Envelope, *transport.CustomerWithProfile) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/Customer/"+url.PathEscape(customerID)+"/profile", gateway.Options{})
	if err != nil {
		uc.logger.Warn("profile fetch transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var result transport.CustomerWithProfile
	if err := env.DecodeData(&result); err != nil {
		uc.logger.Error("profile payload decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return env, &result
}

// GetProfileInfo fetches the flattened profile view.
func (uc *UseCase) GetProfileInfo(ctx context.Context, customerID string) (transport.Envelope, *transport.CustomerProfileInfo) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/Customer/"+url.PathEscape(customerID)+"/profile-info", gateway.Options{})
	if err != nil {
		uc.logger.Warn("profile info transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var result transport.CustomerProfileInfo
	if err := env.DecodeData(&result); err != nil {
		uc.logger.Error("profile info payload decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return env, &result
}

// GetCustomerSummary fetches the compact card view.
func (uc *UseCase) GetCustomerSummary(ctx context.Context, customerID string) (transport.Envelope, *transport.CustomerSummary) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/Customer/"+url.PathEscape(customerID), gateway.Options{})
	if err != nil {
		uc.logger.Warn("summary transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var result transport.CustomerSummary
	if err := env.DecodeData(&result); err != nil {
		uc.logger.Error("summary payload decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return env, &result
}

// UpdateProfile saves profile edits and merges the visible fields into the
// session customer on success.
func (uc *UseCase) UpdateProfile(ctx context.Context, customerID string, req transport.UpdateProfileRequest) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPut, "/CustomerProfile/"+url.PathEscape(customerID), req)
	if err != nil {
		uc.logger.Warn("profile update transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}

	env := transport.ParseEnvelope(resp.Body)
	if env.IsSuccess {
		fullName := strings.TrimSpace(req.FirstName + " " + req.LastName)
		update := domain.CustomerUpdate{FullName: &fullName}
		if req.Phone != "" {
			phone := req.Phone
			update.Phone = &phone
		}
		uc.sessions.UpdateCustomer(update)
	}
	return env
}

// UploadAvatar sends the image as multipart form data. The gateway's JSON
// default is overridden by the form's content type.
func (uc *UseCase) UploadAvatar(ctx context.Context, customerID, filename string, image []byte) transport.Envelope {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("avatar", filepath.Base(filename))
	if err != nil {
		uc.logger.Error("avatar form build failed", zap.Error(err))
		return transport.NewNetworkError()
	}
	if _, err := part.Write(image); err != nil {
		uc.logger.Error("avatar form write failed", zap.Error(err))
		return transport.NewNetworkError()
	}
	if err := form.Close(); err != nil {
		uc.logger.Error("avatar form close failed", zap.Error(err))
		return transport.NewNetworkError()
	}

	resp, err := uc.api.Request(ctx, http.MethodPost, "/CustomerProfile/"+url.PathEscape(customerID)+"/upload-avatar", gateway.Options{
		Body:        body.Bytes(),
		ContentType: form.FormDataContentType(),
	})
	if err != nil {
		uc.logger.Warn("avatar upload transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// GetLoyaltyPoints fetches the loyalty balance and refreshes the session
// customer's counter on success.
func (uc *UseCase) GetLoyaltyPoints(ctx context.Context, customerID string) (transport.Envelope, int) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/CustomerProfile/"+url.PathEscape(customerID)+"/loyalty-points/balance", gateway.Options{})
	if err != nil {
		uc.logger.Warn("loyalty balance transport failure", zap.Error(err))
		return transport.NewNetworkError(), 0
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, 0
	}

	var balance int
	if err := env.DecodeData(&balance); err != nil {
		uc.logger.Error("loyalty balance decode failed", zap.Error(err))
		return transport.NewNetworkError(), 0
	}
	uc.sessions.UpdateCustomer(domain.CustomerUpdate{LoyaltyPoints: &balance})
	return env, balance
}
