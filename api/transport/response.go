package transport

import "encoding/json"

// Envelope is the uniform success/data/error wrapper returned by every
// backend endpoint. IsSuccess is authoritative regardless of HTTP status.
type Envelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Data      json.RawMessage `json:"data,omitempty"`
	Message   string          `json:"message,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NetworkErrorMessage is the synthesized error for transport failures.
const NetworkErrorMessage = "Network error occurred"

// NewNetworkError returns the envelope synthesized when the transport
// itself fails and no backend response was received.
func NewNetworkError() Envelope {
	return Envelope{
		IsSuccess: false,
		Error:     NetworkErrorMessage,
	}
}

// DecodeData unmarshals the data payload into out. A missing payload is
// reported as-is by encoding/json.
func (e Envelope) DecodeData(out interface{}) error {
	return json.Unmarshal(e.Data, out)
}

// FailureReason returns the most specific failure text for display.
func (e Envelope) FailureReason() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ParseEnvelope decodes a backend response body. A body that is not a
// valid envelope is treated like a transport failure.
func ParseEnvelope(body []byte) Envelope {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return NewNetworkError()
	}
	return env
}

// AuthResult is returned by a successful authenticate call.
type AuthResult struct {
	CustomerID       string           `json:"customerId"`
	Email            string           `json:"email"`
	FullName         string           `json:"fullName"`
	SessionID        string           `json:"sessionId"`
	AuthenticatedAt  string           `json:"authenticatedAt"`
	IsEmailConfirmed bool             `json:"isEmailConfirmed"`
	Profile          *CustomerProfile `json:"profile,omitempty"`
}

// RegisterResult is returned by a successful registration call.
type RegisterResult struct {
	CustomerID string `json:"customerId"`
	Email      string `json:"email"`
}

// CustomerProfile is the full profile record.
type CustomerProfile struct {
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	Phone                  string `json:"phone"`
	DateOfBirth            string `json:"dateOfBirth,omitempty"`
	AvatarURL              string `json:"avatarUrl,omitempty"`
	LoyaltyPoints          int    `json:"loyaltyPoints"`
	LastOrderDate          string `json:"lastOrderDate,omitempty"`
	PreferredPaymentMethod string `json:"preferredPaymentMethod,omitempty"`
	UserGrade              int    `json:"userGrade"`
	TotalRatings           int    `json:"totalRatings"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

// CustomerWithProfile pairs the account record with its profile.
type CustomerWithProfile struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	IsActive  bool             `json:"isActive"`
	CreatedAt string           `json:"createdAt"`
	Profile   *CustomerProfile `json:"profile,omitempty"`
}

// CustomerProfileInfo is the flattened profile view used by the profile tab.
type CustomerProfileInfo struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	Phone                  string `json:"phone"`
	DateOfBirth            string `json:"dateOfBirth,omitempty"`
	AvatarURL              string `json:"avatarUrl,omitempty"`
	PreferredPaymentMethod string `json:"preferredPaymentMethod,omitempty"`
	CreatedAt              string `json:"createdAt"`
	UpdatedAt              string `json:"updatedAt"`
}

// CustomerSummary is the compact card view of a customer.
type CustomerSummary struct {
	ID            string `json:"id"`
	LoyaltyPoints int    `json:"loyaltyPoints"`
	UserGrade     int    `json:"userGrade"`
	TotalRatings  int    `json:"totalRatings"`
	AvatarURL     string `json:"avatarUrl"`
	FullName      string `json:"fullName"`
}

// Address is a saved delivery address.
type Address struct {
	ID                   string   `json:"id"`
	Label                string   `json:"label"`
	FullAddress          string   `json:"fullAddress"`
	City                 string   `json:"city"`
	PostalCode           string   `json:"postalCode"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	Building             string   `json:"building"`
	Apartment            string   `json:"apartment"`
	Floor                string   `json:"floor"`
	IsDefault            bool     `json:"isDefault"`
	DeliveryInstructions string   `json:"deliveryInstructions"`
}
