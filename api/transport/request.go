package transport

type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateCustomerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type VerifyOtpRequest struct {
	Email   string `json:"email"`
	OtpCode string `json:"otpCode"`
}

type ResendOtpRequest struct {
	Email string `json:"email"`
}

type RequestPasswordResetRequest struct {
	Email string `json:"email"`
}

type ChangePasswordWithOtpRequest struct {
	Email       string `json:"email"`
	OtpCode     string `json:"otpCode"`
	NewPassword string `json:"newPassword"`
}

type ChangePasswordRequest struct {
	CustomerID      string `json:"customerId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdateProfileRequest struct {
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	Phone                  string `json:"phone,omitempty"`
	DateOfBirth            string `json:"dateOfBirth,omitempty"`
	PreferredPaymentMethod string `json:"preferredPaymentMethod,omitempty"`
}

type CreateAddressRequest struct {
	Label                string   `json:"label"`
	FullAddress          string   `json:"fullAddress"`
	City                 string   `json:"city"`
	PostalCode           string   `json:"postalCode"`
	Building             string   `json:"building,omitempty"`
	Apartment            string   `json:"apartment,omitempty"`
	Floor                string   `json:"floor,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	IsDefault            bool     `json:"isDefault,omitempty"`
	DeliveryInstructions string   `json:"deliveryInstructions,omitempty"`
}

type UpdateAddressRequest struct {
	Label                string   `json:"label"`
	FullAddress          string   `json:"fullAddress"`
	City                 string   `json:"city"`
	PostalCode           string   `json:"postalCode"`
	Building             string   `json:"building,omitempty"`
	Apartment            string   `json:"apartment,omitempty"`
	Floor                string   `json:"floor,omitempty"`
	Latitude             *float64 `json:"latitude,omitempty"`
	Longitude            *float64 `json:"longitude,omitempty"`
	DeliveryInstructions string   `json:"deliveryInstructions,omitempty"`
}
