package models

// TokenPayload is the authenticated identity carried by an auth token
type TokenPayload struct {
	VendorID uint64
	UserID   uint64
}
