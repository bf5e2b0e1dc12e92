// Package cookiestore keeps the API session cookie across client restarts.
//
// The browser build of the storefront relied on the browser's cookie store to
// carry the server session between page loads. The CLI gets the same effect
// from Jar: an http.CookieJar that wraps net/http/cookiejar and mirrors every
// cookie it accepts into a local SQLite table. Cookie values are sealed with
// cryptox under a per-installation key before they touch the disk.
//
// OpenDatabase opens (or creates) the database file and applies the embedded
// goose migrations. NewPersistentJar replays the saved cookies into a fresh
// jar; NewMemoryJar returns a jar that never persists anything.
package cookiestore
