package common

// AccessTokenQueryParam is the query parameter carrying the access token on
// websocket upgrades, where browsers cannot set an Authorization header.
const AccessTokenQueryParam = "access_token"

// BearerPrefix prefixes the access token in the Authorization header.
const BearerPrefix = "Bearer "
