// Package users provides account bookkeeping and credential authentication:
// a bun-backed account store with strict email uniqueness, bcrypt password
// verification, and HS256 bearer token issuance/validation.
//
// Account lifecycle:
//   - Accounts are created once through the Users repository (or the
//     CreateUserHandler command) with a defaulted USER role and active=true.
//     Inactive accounts are rejected at login even with correct credentials.
//
// Tokens:
//   - TokenService signs JWTs whose subject is the account email, carrying
//     userId and role claims plus an expiry derived from the configured
//     validity window. Validation pins the HMAC family and checks both
//     signature and expiry; Auther.ValidateToken collapses every failure
//     into a boolean so callers never see parse errors.
package users
