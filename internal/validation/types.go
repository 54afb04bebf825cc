package validation

// ProductRequest is the payload for creating or updating a product.
// Fields must be non-blank after trimming; category is the fixed pair the
// storefront sells; stock is a pointer so an explicit 0 still validates.
type ProductRequest struct {
	Name        string  `json:"name" validate:"required,notblank"`
	Description string  `json:"description" validate:"required,notblank"`
	Category    string  `json:"category" validate:"required,oneof=seeds plants"`
	ImageURL    string  `json:"imageUrl" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       *int    `json:"stock" validate:"required,gte=0"`
}

// CustomerInfo is the shipping snapshot collected at checkout.
type CustomerInfo struct {
	Name        string `json:"name" validate:"required,notblank"`
	Address     string `json:"address" validate:"required,notblank"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}

// CheckoutRequest is the payload for POST /orders. The items come from the
// caller's session cart; expectedTotal, when present, is the total the
// shopper saw and must match the cart at order time.
type CheckoutRequest struct {
	CustomerInfo  CustomerInfo `json:"customerInfo" validate:"required"`
	ExpectedTotal float64      `json:"expectedTotal" validate:"omitempty,gt=0"`
}

// CartAddRequest is the payload for POST /cart/items.
type CartAddRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// CartQuantityRequest is the payload for PATCH /cart/items/:id.
// Quantity <= 0 removes the line, so no lower bound here.
type CartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// StatusUpdateRequest is the payload for PUT /orders/:id/status.
// Force is the explicit override for corrections out of terminal states.
type StatusUpdateRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"trackingNumber"`
	Force          bool   `json:"force"`
}

// ProfileRequest is the payload for PUT /profile.
type ProfileRequest struct {
	Name        string `json:"name" validate:"required,notblank"`
	Address     string `json:"address" validate:"required,notblank"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
}
