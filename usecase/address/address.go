package address

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/puredelivery/client/api/transport"
	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/internal/gateway"
)

// SessionStore is the slice of the session store the address flows mutate.
type SessionStore interface {
	UpdateCustomer(update domain.CustomerUpdate)
}

// Gateway is the single chokepoint used for every backend call.
type Gateway interface {
	Request(ctx context.Context, method, path string, opts gateway.Options) (*gateway.Response, error)
	RequestJSON(ctx context.Context, method, path string, payload interface{}) (*gateway.Response, error)
}

// UseCase implements the delivery address service surface.
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

// List fetches all saved addresses of a customer.
func (uc *UseCase) List(ctx context.Context, customerID string) (transport.Envelope, []transport.Address) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/CustomerAddress/customer/"+url.PathEscape(customerID), gateway.Options{})
	if err != nil {
		uc.logger.Warn("address list transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}

	var addresses []transport.Address
	if err := env.DecodeData(&addresses); err != nil {
		uc.logger.Error("address list decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return env, addresses
}

// Get fetches a single address.
func (uc *UseCase) Get(ctx context.Context, addressID string) (transport.Envelope, *transport.Address) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/CustomerAddress/"+url.PathEscape(addressID), gateway.Options{})
	if err != nil {
		uc.logger.Warn("address fetch transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return uc.decodeAddress(resp)
}

// GetDefault fetches the customer's default address.
func (uc *UseCase) GetDefault(ctx context.Context, customerID string) (transport.Envelope, *transport.Address) {
	resp, err := uc.api.Request(ctx, http.MethodGet, "/CustomerAddress/customer/"+url.PathEscape(customerID)+"/default", gateway.Options{})
	if err != nil {
		uc.logger.Warn("default address transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return uc.decodeAddress(resp)
}

// Add creates an address. When the new address is the default one, the
// session customer is updated to carry it.
func (uc *UseCase) Add(ctx context.Context, customerID string, req transport.CreateAddressRequest) (transport.Envelope, *transport.Address) {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPost, "/CustomerAddress/customer/"+url.PathEscape(customerID), req)
	if err != nil {
		uc.logger.Warn("address create transport failure", zap.Error(err))
		return transport.NewNetworkError(), nil
	}

	env, created := uc.decodeAddress(resp)
	if created != nil && created.IsDefault {
		uc.sessions.UpdateCustomer(domain.CustomerUpdate{DefaultAddress: sessionAddress(*created)})
	}
	return env, created
}

// Update edits an existing address.
func (uc *UseCase) Update(ctx context.Context, addressID string, req transport.UpdateAddressRequest) transport.Envelope {
	resp, err := uc.api.RequestJSON(ctx, http.MethodPut, "/CustomerAddress/"+url.PathEscape(addressID), req)
	if err != nil {
		uc.logger.Warn("address update transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// Delete removes an address.
func (uc *UseCase) Delete(ctx context.Context, addressID string) transport.Envelope {
	resp, err := uc.api.Request(ctx, http.MethodDelete, "/CustomerAddress/"+url.PathEscape(addressID), gateway.Options{})
	if err != nil {
		uc.logger.Warn("address delete transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

// SetDefault marks an address as the delivery default. Callers refresh the
// session's default address through GetDefault when they need it; this
// function stays a single fire-once call like the rest of the layer.
func (uc *UseCase) SetDefault(ctx context.Context, customerID, addressID string) transport.Envelope {
	path := "/CustomerAddress/customer/" + url.PathEscape(customerID) + "/default/" + url.PathEscape(addressID)
	resp, err := uc.api.Request(ctx, http.MethodPut, path, gateway.Options{})
	if err != nil {
		uc.logger.Warn("set default address transport failure", zap.Error(err))
		return transport.NewNetworkError()
	}
	return transport.ParseEnvelope(resp.Body)
}

func (uc *UseCase) decodeAddress(resp *gateway.Response) (transport.Envelope, *transport.Address) {
	env := transport.ParseEnvelope(resp.Body)
	if !env.IsSuccess {
		return env, nil
	}
	var addr transport.Address
	if err := env.DecodeData(&addr); err != nil {
		uc.logger.Error("address decode failed", zap.Error(err))
		return transport.NewNetworkError(), nil
	}
	return env, &addr
}

func sessionAddress(a transport.Address) *domain.CustomerAddress {
	return &domain.CustomerAddress{
		ID:          a.ID,
		Label:       a.Label,
		FullAddress: a.FullAddress,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Latitude:    a.Latitude,
		Longitude:   a.Longitude,
		Building:    a.Building,
		Apartment:   a.Apartment,
		Floor:       a.Floor,
	}
}
