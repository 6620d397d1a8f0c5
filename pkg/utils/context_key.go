package utils

// ContextKey is the key type for request-scoped values set by the JWT
// middleware (userId, username, role, expiresAt).
type ContextKey string
