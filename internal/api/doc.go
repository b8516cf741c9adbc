// Package api provides the gateway REST client.
//
// Endpoints:
//   - POST /auth/register, POST /auth/login (form-encoded), GET /auth/me
//   - GET/POST /alerts/, DELETE /alerts/{id}, POST /alerts/{id}/toggle
//   - GET /prices/ (bootstrap snapshot)
//
// All endpoints except register and login attach a bearer token when a
// session exists. Login uses application/x-www-form-urlencoded with the
// OAuth2 password-grant field names; everything else is JSON.
package api
