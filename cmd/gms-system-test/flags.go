// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/SNL-GMS/GMS-PI23/internal"
	"github.com/SNL-GMS/GMS-PI23/internal/config"
)

// flagKeys maps every flag that overrides the configuration to its koanf key.
var flagKeys = map[string]string{
	"tag":             "tag",
	"type":            "type",
	"instance":        "instance",
	"wait-timeout":    "retry.wait.timeout",
	"sleep":           "sleep",
	"test":            "test",
	"env":             "env",
	"parallel":        "parallel",
	"stage":           "stages",
	"dry-run":         "dryRun",
	"log-level":       "logLevel",
	"reports-dir":     "reportsParent",
	"kubeconfig":      "kubeConfig",
	"credentials-dir": "credentialsDir",
}

var retrySettings = []string{"attempts", "delay", "timeout"}

func retryFlag(stage internal.StageName, setting string) string {
	return fmt.Sprintf("%s-retry-%s", stage, setting)
}

func addFlags(flags *pflag.FlagSet) {
	defaults := config.Default()

	flags.String("config", "", "Path to a YAML configuration file; flags take precedence over it")
	flags.String("tag", "", "The tag name, which corresponds to the name of the branch you want to test")
	flags.String("type", "", fmt.Sprintf("The type of instance to stand up (one of %s)", strings.Join(config.InstanceTypes, ", ")))
	flags.String("instance", "", "The name of an existing instance to test against")
	flags.Int("wait-timeout", defaults.Retry.Wait.Timeout, "How long to wait (in seconds) for all the pods to be ready")
	flags.Int("sleep", defaults.Sleep, "How long to wait (in seconds) between the instance being ready and running the test")
	flags.String("test", "", "The name of the test augmentation to apply")
	flags.StringArray("env", nil, "Environment variables to pass to the test augmentation (NAME=VALUE or TEST.NAME=VALUE); repeatable")
	flags.Int("parallel", defaults.Parallel, "How many identical test pods to run (1 to 10)")
	flags.StringSlice("stage", defaults.Stages, fmt.Sprintf("Which stages to run (%s)", strings.Join(internal.StageNames(), ", ")))
	flags.Bool("dry-run", false, "Only print the commands that would be executed")
	flags.String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	flags.String("reports-dir", defaults.ReportsParent, "Where to create the test report directory")
	flags.String("kubeconfig", "", "Path to the kubeconfig file; defaults to the usual client lookup")
	flags.String("credentials-dir", "", "Where the reporting credentials of installed instances are kept")

	for _, stage := range internal.CanonicalStages {
		policy := defaults.Policy(stage)
		flags.Int(retryFlag(stage, "attempts"), policy.Attempts, fmt.Sprintf("How many times to attempt the %s stage", stage))
		flags.Int(retryFlag(stage, "delay"), int(policy.Delay.Seconds()), fmt.Sprintf("Seconds to wait between attempts of the %s stage", stage))
		flags.Int(retryFlag(stage, "timeout"), int(policy.Timeout.Seconds()), fmt.Sprintf("Timeout in seconds for the %s stage", stage))
		if stage == internal.StageTest {
			continue
		}
		for _, setting := range retrySettings {
			_ = flags.MarkHidden(retryFlag(stage, setting))
		}
	}
}

// overrides returns the koanf overrides of the flags the user actually set.
func overrides(flags *pflag.FlagSet) (map[string]any, error) {
	keys := map[string]string{}
	for flag, key := range flagKeys {
		keys[flag] = key
	}
	for _, stage := range internal.CanonicalStages {
		for _, setting := range retrySettings {
			keys[retryFlag(stage, setting)] = fmt.Sprintf("retry.%s.%s", stage, setting)
		}
	}

	values := map[string]any{}
	for flag, key := range keys {
		if !flags.Changed(flag) {
			continue
		}
		value, err := flagValue(flags, flag)
		if err != nil {
			return nil, err
		}
		if flag == "tag" {
			value = config.NormalizeTag(value.(string))
		}
		values[key] = value
	}
	return values, nil
}

func flagValue(flags *pflag.FlagSet, name string) (any, error) {
	f := flags.Lookup(name)
	if f == nil {
		return nil, fmt.Errorf("unknown flag %s", name)
	}
	switch f.Value.Type() {
	case "string":
		return flags.GetString(name)
	case "int":
		return flags.GetInt(name)
	case "bool":
		return flags.GetBool(name)
	case "stringArray":
		return flags.GetStringArray(name)
	case "stringSlice":
		return flags.GetStringSlice(name)
	default:
		return nil, fmt.Errorf("unsupported type %s of flag %s", f.Value.Type(), name)
	}
}
