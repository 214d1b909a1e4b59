// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	errNoSyncHandler   = errors.New("remote store server has no HTTP handler")
	errNoListenAddress = errors.New("remote store server has no listen address")
)
