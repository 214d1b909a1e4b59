// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the client application runtime.
//
// It wires the local store, the offline queue, connectivity probing, the
// sync engine, background delivery and the status screen into a single
// process lifecycle.
package client
