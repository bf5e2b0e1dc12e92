// Package api is the client side of the storefront authentication API.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) covering the
//     three authentication endpoints: who-am-I (Me), Login and Logout.
//  2. An HTTP/JSON implementation (see HTTPClient) that attaches the session
//     cookie through an http.CookieJar, tags every request with an
//     X-Request-ID, and maps transport and server failures to the errors
//     below.
//
// # Error Handling
//
// Transport failures (the request never completed, including context
// cancellation) are reported as ErrUnavailable. A non-2xx status or a
// {"success": false} body becomes *RejectedError carrying the server's
// "error" text, or ErrUnauthorized for 401/403 replies without one. Bodies
// that do not decode into the expected shape yield ErrMalformedResponse.
// Match with errors.Is / errors.As.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use; requests are independent and share
// only the cookie jar.
package api
