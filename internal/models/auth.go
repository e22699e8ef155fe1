package models

// TokenPayload is the verified content of an operator session token
type TokenPayload struct {
	Login string
}
