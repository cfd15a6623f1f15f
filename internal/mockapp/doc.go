// Package mockapp is an in-process reference implementation of the
// document-vault object API. The appapi client tests run against it, and the
// `stackproof mock-app` command serves it locally so suite configuration can
// be exercised without a deployed application.
//
// It implements the same surface the suite asserts on:
//
//	POST    /api/v1/objects/:key   store a document (201 new, 200 overwrite)
//	GET     /api/v1/objects        list stored documents
//	GET     /api/v1/objects/:key   fetch a document body
//	DELETE  /api/v1/objects/:key   remove a document (204)
//
// Requests are authenticated with the same HS256 bearer tokens the real
// application expects. An optional notification hook fires on every upload,
// mirroring the production behavior of emailing a delivery notice; tests use
// it to feed a fake capture inbox.
package mockapp
