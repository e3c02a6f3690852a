// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the link daemon runtime.
//
// It restores the platform session, keeps the push pipeline and the status
// poll running while the user is signed in, serves diagnostics, and shuts
// everything down in order on a termination signal.
package client
