// Package client contains the client-side building blocks of blogctl.
//
// # Overview
//
// The package provides:
//  1. The Client interface: register, login, me, blog CRUD and a health ping.
//  2. HTTPClient, its implementation over the JSON API. Images are sent as
//     multipart uploads and come back in base64 form.
//  3. InitDatabase and RunMigrations, which open the local SQLite file that
//     keeps the saved session.
//
// # Error Handling
//
// Failure responses decode into *APIError. It unwraps to ErrUnauthorized,
// ErrNotFound or ErrUnavailable where the status allows, so callers can use
// errors.Is. Transport failures are reported as ErrUnavailable.
package client
