// Package client contains client-side building blocks for tripauth.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     four auth operations and a liveness probe.
//  2. A gRPC implementation (see GRPCClient) that sends the bearer token in
//     the access_token metadata header and maps transport failures to
//     sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     session file, an SQLite database with embedded goose migrations.
//
// # Error Handling
//
// A server-side failure arrives as a *RejectedError whose message is meant
// for display. Transport problems are ErrUnavailable; callers match both
// with errors.Is / errors.As.
package client
