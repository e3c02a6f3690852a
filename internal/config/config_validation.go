// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"
)

// validate checks that the merged [StructuredConfig] can start the client.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.APIAddress == "" || cfg.Adapter.PipelineAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if _, err := url.ParseRequestURI(cfg.Adapter.APIAddress); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAdapterConfigs, err)
	}
	if cfg.Adapter.PageRetries < 0 || cfg.Adapter.PageRetryDelay < 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Queue.TotalPerMinute < 0 {
		return ErrInvalidQueueConfigs
	}
	for _, limit := range cfg.Queue.TypePerMinute {
		if limit < 0 {
			return ErrInvalidQueueConfigs
		}
	}

	if cfg.Workers.StatusPollInterval <= 0 || cfg.Workers.StaleAfter <= 0 || cfg.Workers.WatchdogInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.UserAgent == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
