// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitfield/script"
	"github.com/moby/go-archive"

	"github.com/SNL-GMS/GMS-PI23/internal"
)

const (
	SentinelSuccess = "TEST AUGMENTATION POD RESULT:  SUCCESS"
	SentinelFailure = "TEST AUGMENTATION POD RESULT:  FAILURE"
	ResultFileName  = "testrun.txt"
)

var (
	ErrNoVerdict           = errors.New("didn't find 'TEST AUGMENTATION POD RESULT'")
	ErrInsufficientResults = errors.New("not enough result objects")
)

// PodSucceeded reads the verdict a test pod wrote to its output file.
func PodSucceeded(outputFile string) (bool, error) {
	for _, verdict := range []struct {
		sentinel string
		success  bool
	}{{SentinelSuccess, true}, {SentinelFailure, false}} {
		n, err := script.File(outputFile).Match(verdict.sentinel).CountLines()
		if err != nil {
			return false, fmt.Errorf("failed to read %s: %w", outputFile, err)
		}
		if n > 0 {
			return verdict.success, nil
		}
	}
	return false, fmt.Errorf("%w in '%s'", ErrNoVerdict, outputFile)
}

// Extract unpacks a tar archive, compressed or not, into dest and removes it.
func Extract(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := archive.Untar(f, dest, &archive.TarOptions{NoLchown: true}); err != nil {
		return fmt.Errorf("failed to extract %s: %w", archivePath, err)
	}
	return os.Remove(archivePath)
}

// Retriever collects the result archives of a test from the reporting bucket.
type Retriever struct {
	Store  Store
	Bucket string
}

func (r *Retriever) matching(ctx context.Context, test string) ([]string, error) {
	keys, err := r.Store.ListObjects(ctx, r.Bucket)
	if err != nil {
		return nil, err
	}
	matched := []string{}
	for _, key := range keys {
		// Plain substring match: a test whose name contains another test's
		// name picks up the other test's archives too.
		if strings.Contains(key, test) {
			matched = append(matched, key)
		}
	}
	return matched, nil
}

// Retrieve extracts every archive of test into resultsDir and reports whether
// every pod succeeded. Fewer archives than expected is an error, and so is an
// output file without a verdict. No archives at all never count as success.
func (r *Retriever) Retrieve(ctx context.Context, test, resultsDir string, expected int) (bool, error) {
	logger := internal.Logger()
	keys, err := r.matching(ctx, test)
	if err != nil {
		return false, err
	}

	results := []bool{}
	for _, key := range keys {
		name := filepath.Base(key)
		localPath := filepath.Join(resultsDir, name)
		if err := r.Store.GetObject(ctx, r.Bucket, key, localPath); err != nil {
			return false, err
		}
		if err := Extract(localPath, resultsDir); err != nil {
			return false, err
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		success, err := PodSucceeded(filepath.Join(resultsDir, stem, ResultFileName))
		if err != nil {
			return false, err
		}
		logger.Debugw("Retrieved test result", "object", key, "success", success)
		results = append(results, success)
	}

	if len(results) < expected {
		return false, fmt.Errorf("%w: expecting %d results objects in the '%s' bucket; only found %d",
			ErrInsufficientResults, expected, r.Bucket, len(results))
	}
	if len(results) == 0 {
		return false, nil
	}
	for _, success := range results {
		if !success {
			return false, nil
		}
	}
	return true, nil
}

// Purge removes every object of test from the bucket, with the same matching
// as Retrieve.
func (r *Retriever) Purge(ctx context.Context, test string) error {
	keys, err := r.matching(ctx, test)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := r.Store.RemoveObject(ctx, r.Bucket, key); err != nil {
			return fmt.Errorf("failed to remove %s/%s: %w", r.Bucket, key, err)
		}
	}
	return nil
}
