package models

// User is the session user as returned by the commerce backend's
// session-check endpoint. It lives only in the session; nothing is
// persisted locally beyond the Redis session state.
type User struct {
	ID       string      `json:"id"`
	Email    string      `json:"email"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone,omitempty"`
	Address  string      `json:"address,omitempty"`
	Points   int64       `json:"points"`
	IsSeller bool        `json:"is_seller"`
	Seller   *SellerInfo `json:"seller_info,omitempty"`
}

// SellerInfo is present when the user has a registered shop.
type SellerInfo struct {
	ShopName     string `json:"shop_name"`
	BusinessNo   string `json:"business_no,omitempty"`
	RepName      string `json:"rep_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
}

// Credentials is the login request body proxied to the backend.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Registration is the register request body proxied to the backend.
type Registration struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone,omitempty"`
}
