// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models holds the data types shared by the client sync layer and the
// remote store: entity and collection names, queued mutations, snapshots,
// sync results and tokens.
package models
