// Package client is the resource gateway of the catalog client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): product
//     CRUD, login and the current-user check.
//  2. A concrete HTTP implementation (see HTTPClient) that routes every call
//     through the shared netx.Client and translates HTTP statuses into the
//     error taxonomy below.
//
// Gateway functions are plain request/response mappings. They neither cache
// nor touch client state; that is the job of the query cache and the mutation
// orchestrator.
//
// # Error Handling
//
// Failures are *StatusError values that unwrap to one of the sentinels, so
// callers match them with errors.Is:
//
//	ErrBadRequest   any 4xx other than the ones below
//	ErrUnauthorized 401, 403 (and every 4xx from Login)
//	ErrNotFound     404
//	ErrServerError  5xx
//	ErrNetwork      no response was received
//
// CurrentUser is the exception: it never fails and reports problems as the
// unauthenticated marker instead.
package client
