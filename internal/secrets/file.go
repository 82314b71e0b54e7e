// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Credentials are the keys an instance's reporting augmentation was
// installed with. A later run against the same instance needs the same keys.
type Credentials struct {
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
}

// FileSaver keeps one credentials file per instance in Dir.
type FileSaver struct {
	Dir string
}

func NewFileSaver(dir string) *FileSaver {
	return &FileSaver{Dir: dir}
}

// DefaultDir is where credentials are kept unless configured otherwise.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gms-system-test", "credentials"), nil
}

func (f *FileSaver) path(instance string) string {
	return filepath.Join(f.Dir, instance+".yaml")
}

func (f *FileSaver) SaveSecret(instance string, creds Credentials) error {
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path(instance), data, 0o600)
}

// GetSecret returns the saved credentials of instance. ok is false when none
// were saved.
func (f *FileSaver) GetSecret(instance string) (Credentials, bool, error) {
	creds := Credentials{}
	data, err := os.ReadFile(f.path(instance))
	if errors.Is(err, os.ErrNotExist) {
		return creds, false, nil
	}
	if err != nil {
		return creds, false, err
	}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return creds, false, fmt.Errorf("failed to parse credentials of %s: %w", instance, err)
	}
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return creds, false, fmt.Errorf("incomplete credentials saved for %s", instance)
	}
	return creds, true, nil
}

func (f *FileSaver) RemoveSecret(instance string) error {
	if err := os.Remove(f.path(instance)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
