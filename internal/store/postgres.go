// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlayGrid Contributors

// Package store provides the PostgreSQL connection pool and schema
// migrations shared by the repositories and the event bus.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// connectTimeout bounds the initial connectivity check.
const connectTimeout = 5 * time.Second

// Connect opens a pgx pool and verifies connectivity with a ping.
// Connectivity failures surface with the STORE_UNAVAILABLE code.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "open pool").
			Wrap(err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, oops.Code("STORE_UNAVAILABLE").
			With("operation", "ping").
			Wrap(err)
	}
	return pool, nil
}
