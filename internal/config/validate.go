// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)
	validate     = newValidator()
)

const maxTagLength = 63

// NormalizeTag turns a branch or tag name into a slug: lower case, anything
// outside [a-z0-9] replaced with "-", no leading or trailing "-", at most 63
// characters.
func NormalizeTag(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxTagLength {
		slug = strings.TrimRight(slug[:maxTagLength], "-")
	}
	return slug
}

// ValidEnv reports whether s can be passed as --env. The empty string is
// accepted and later dropped.
func ValidEnv(s string) bool {
	return s == "" || strings.Contains(s, "=")
}

func DropEmptyEnv(env []string) []string {
	kept := []string{}
	for _, e := range env {
		if e != "" {
			kept = append(kept, e)
		}
	}
	return kept
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("envpair", func(fl validator.FieldLevel) bool {
		return ValidEnv(fl.Field().String())
	})
	return v
}

func (c *SystemTestConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := []string{}
			for _, fe := range fieldErrs {
				msgs = append(msgs, describe(fe))
			}
			return invalidArgument(strings.Join(msgs, "; "))
		}
		return invalidArgument(err.Error())
	}

	if c.HasStage(internal.StageTest) && c.Test == "" {
		return invalidArgument("You must specify which test to run via the `--test` flag. " +
			"Run `gmskube augment catalog --tag <reference>` to see the available tests.")
	}
	if c.HasStage(internal.StageInstall) && (c.Tag == "" || c.Type == "") {
		return invalidArgument("You must either specify (1) both `--tag` and `--type` to stand up a " +
			"temporary instance, or (2) `--instance <name>` and omit `install` from the `--stage`s " +
			"to run to test against an existing one.")
	}
	if !c.HasStage(internal.StageInstall) && c.Instance == "" {
		return invalidArgument("The instance name is necessary when the install stage is skipped. " +
			"Specify `--instance` on the command line.")
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "envpair":
		return "When specifying `--env`, you must supply the name/value pair as `Name=Value`."
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fmt.Sprint(fe.Value()))
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag())
	}
}

func invalidArgument(msg string) error {
	return &internal.SystemTestError{
		ErrorCode: internal.SystemTestErrorCodeInvalidArgument,
		ErrorMsg:  msg,
	}
}
