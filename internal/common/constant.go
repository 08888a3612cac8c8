package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// bearer token on outbound requests.
const AccessTokenHeaderName = "access_token"

// Keys of the two collections kept in the persistence substrate.
const (
	UsersKey    = "auth.users"
	SessionsKey = "auth.sessions"
)

// Keys under which the client keeps its restorable session.
const (
	ClientTokenKey = "authToken"
	ClientEmailKey = "userEmail"
	ClientUserKey  = "user"
)
