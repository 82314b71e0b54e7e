// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

// Load layers the defaults, the optional YAML file and the overrides (keys
// in koanf dotted form, e.g. "retry.test.attempts") and validates the result.
func Load(configFile string, overrides map[string]any) (*SystemTestConfig, error) {
	k := koanf.New(".")
	// NOTE: Set parser to nil since we don't need to parse go struct
	if err := k.Load(structs.Provider(Default(), "yaml"), nil); err != nil {
		return nil, &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInternal,
			ErrorMsg:  fmt.Sprintf("failed to load default configuration: %v", err),
			Err:       err,
		}
	}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, &internal.SystemTestError{
				ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  fmt.Sprintf("failed to read config file %s: %v", configFile, err),
				Err:       err,
			}
		}
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, &internal.SystemTestError{
				ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  fmt.Sprintf("failed to parse config file %s: %v", configFile, err),
				Err:       err,
			}
		}
	}

	for key, value := range overrides {
		if err := k.Set(key, value); err != nil {
			return nil, &internal.SystemTestError{
				ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
				ErrorMsg:  fmt.Sprintf("failed to set %s: %v", key, err),
				Err:       err,
			}
		}
	}

	cfg := &SystemTestConfig{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, &internal.SystemTestError{
			ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
			ErrorMsg:  fmt.Sprintf("failed to decode configuration: %v", err),
			Err:       err,
		}
	}
	cfg.Tag = NormalizeTag(cfg.Tag)
	cfg.Env = DropEmptyEnv(cfg.Env)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SerializeToYAML is used to dump the effective configuration next to the reports.
func SerializeToYAML(cfg *SystemTestConfig) ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "yaml"), nil); err != nil {
		return nil, err
	}
	return k.Marshal(yaml.Parser())
}
