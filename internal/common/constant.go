package common

// AuthorizationHeader is the HTTP header carrying the bearer access token
// on outbound requests.
const AuthorizationHeader = "Authorization"
