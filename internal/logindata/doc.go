// Package logindata decodes and encodes the Chromium "Login Data" SQLite
// store used by Brave. Stored passwords are wrapped in a versioned
// encryption envelope; decoding dispatches on the envelope scheme through a
// lookup table so new browser schemes are added as new handlers. The source
// store is always opened read-only against a safe copy and is never mutated.
//
// Decrypted passwords exist only in memory between decode and re-encode.
// They are never written to disk and never logged.
package logindata
