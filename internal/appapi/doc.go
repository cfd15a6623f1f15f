// Package appapi is the HTTP client for the document-vault application under
// test. It covers the object lifecycle the acceptance suite exercises:
// upload, list, get and delete, authenticated with a short-lived HS256
// bearer token minted by TokenSigner.
package appapi
