package models

// Session binds an issued token to the public id of its owner.
type Session struct {
	Token  string
	UserID string
}
