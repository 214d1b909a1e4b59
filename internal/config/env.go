// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

// envNamespace is the optional prefix shared by every variable, for hosts
// where bare names like APP_TOKEN collide with other software.
const envNamespace = "TRIP_KEEPER_"

// parseEnv populates cfg from environment variables. Field names come from
// the `env` and `envPrefix` tags on [StructuredConfig].
//
// Each variable may also be given under [envNamespace], for example
// TRIP_KEEPER_ADAPTER_ADDRESS. The bare name wins when both are set.
func parseEnv(cfg *StructuredConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error getting env configs: %w", err)
	}

	namespaced, err := env.ParseAsWithOptions[StructuredConfig](env.Options{Prefix: envNamespace})
	if err != nil {
		return fmt.Errorf("error getting %s env configs: %w", envNamespace, err)
	}

	if err = mergo.Merge(cfg, &namespaced); err != nil {
		return fmt.Errorf("error merging %s env configs: %w", envNamespace, err)
	}

	return nil
}
