// Package client contains the client's connections to the outside world.
//
// # Overview
//
//  1. RemoteStore: the contract the sync engine and the authenticator use to
//     reach the remote authoritative store (upsert records, find and create
//     users, probe reachability).
//  2. GRPCClient: the gRPC implementation over the remotestore service and the
//     standard health service. It maps gRPC status codes to sentinel errors.
//  3. InitDatabase / RunMigrations: open the local SQLite cache and apply the
//     embedded goose migrations.
//
// # Error Handling
//
//	codes.NotFound                        -> common.ErrorNotFound
//	codes.AlreadyExists                   -> common.ErrorUsernameTaken
//	codes.InvalidArgument                 -> common.ErrorValidation
//	Unavailable/DeadlineExceeded/
//	ResourceExhausted/Canceled            -> ErrUnavailable
//	anything else                         -> "rpc error: ..."
package client
