package domain

// CustomerAddress is the delivery address summary carried inside a session.
type CustomerAddress struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	FullAddress string   `json:"fullAddress"`
	City        string   `json:"city"`
	PostalCode  string   `json:"postalCode"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Building    string   `json:"building"`
	Apartment   string   `json:"apartment"`
	Floor       string   `json:"floor"`
}

// Customer is the authenticated customer summary held by the session store.
type Customer struct {
	ID             string           `json:"id"`
	Email          string           `json:"email"`
	FullName       string           `json:"fullName"`
	Phone          string           `json:"phone"`
	LoyaltyPoints  int              `json:"loyaltyPoints"`
	DefaultAddress *CustomerAddress `json:"defaultAddress,omitempty"`
}

// CustomerUpdate carries a partial customer mutation. Nil fields are left
// untouched when applied.
type CustomerUpdate struct {
	Email          *string
	FullName       *string
	Phone          *string
	LoyaltyPoints  *int
	DefaultAddress *CustomerAddress
}

// Apply merges the update into a copy of the customer and returns it.
func (u CustomerUpdate) Apply(c Customer) Customer {
	if u.Email != nil {
		c.Email = *u.Email
	}
	if u.FullName != nil {
		c.FullName = *u.FullName
	}
	if u.Phone != nil {
		c.Phone = *u.Phone
	}
	if u.LoyaltyPoints != nil {
		c.LoyaltyPoints = *u.LoyaltyPoints
	}
	if u.DefaultAddress != nil {
		addr := *u.DefaultAddress
		c.DefaultAddress = &addr
	}
	return c
}

// IsZero reports whether the update would change nothing.
func (u CustomerUpdate) IsZero() bool {
	return u.Email == nil && u.FullName == nil && u.Phone == nil &&
		u.LoyaltyPoints == nil && u.DefaultAddress == nil
}
