// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package reports_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/moby/go-archive"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SNL-GMS/GMS-PI23/internal/reports"
)

// fakeStore keeps objects as local files.
type fakeStore struct {
	objects map[string]string
	removed []string
}

func (f *fakeStore) ListObjects(_ context.Context, _ string) ([]string, error) {
	keys := []string{}
	for key := range f.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) GetObject(_ context.Context, _, key, localPath string) error {
	src, err := os.Open(f.objects[key])
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

func (f *fakeStore) RemoveObject(_ context.Context, _, key string) error {
	f.removed = append(f.removed, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return true, nil
}

// makeArchive builds <stem>.tgz holding <stem>/testrun.txt with the given content.
func makeArchive(dir, stem, content string) string {
	src := filepath.Join(dir, "src-"+stem)
	Expect(os.MkdirAll(filepath.Join(src, stem), os.ModePerm)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(src, stem, reports.ResultFileName), []byte(content), 0o600)).To(Succeed())

	tarball, err := archive.TarWithOptions(src, &archive.TarOptions{})
	Expect(err).ToNot(HaveOccurred())
	defer tarball.Close()

	path := filepath.Join(dir, stem+".tgz")
	out, err := os.Create(path)
	Expect(err).ToNot(HaveOccurred())
	defer out.Close()
	_, err = io.Copy(out, tarball)
	Expect(err).ToNot(HaveOccurred())
	return path
}

var _ = Describe("Report bundle", func() {
	It("should create unique directories with an empty log directory", func() {
		parent := GinkgoT().TempDir()
		now := time.Date(2023, 5, 17, 8, 30, 0, 0, time.UTC)
		seen := map[string]bool{}
		for range 5 {
			bundle, err := reports.CreateBundle(parent, now)
			Expect(err).ToNot(HaveOccurred())
			Expect(filepath.Base(bundle.Dir)).To(MatchRegexp(`^system-test-reports-20230517T083000-[a-z0-9]{5}$`))
			Expect(seen).ToNot(HaveKey(bundle.Dir))
			seen[bundle.Dir] = true

			entries, err := os.ReadDir(bundle.LogDir)
			Expect(err).ToNot(HaveOccurred())
			Expect(entries).To(BeEmpty())
		}
	})

	It("should never reuse an attempt directory", func() {
		bundle, err := reports.CreateBundle(GinkgoT().TempDir(), time.Now())
		Expect(err).ToNot(HaveOccurred())

		dir, err := bundle.AttemptDir("jest", 1)
		Expect(err).ToNot(HaveOccurred())
		Expect(filepath.Base(dir)).To(Equal("jest-1"))

		_, err = bundle.AttemptDir("jest", 1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Endpoint", func() {
	ports := map[string]string{"istio_port": "8443", "nginx_port": "12345"}

	It("should use the ingress port without a mesh", func() {
		endpoint, err := reports.ResolveEndpoint("minio-test-reports", "host.name", []string{"/"}, ports, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(endpoint.String()).To(Equal("host.name:12345/"))
		Expect(endpoint.HostPort()).To(Equal("host.name:12345"))
	})

	It("should use the mesh port when the mesh is enabled", func() {
		endpoint, err := reports.ResolveEndpoint("minio-test-reports", "host.name", []string{"/"}, ports, true)
		Expect(err).ToNot(HaveOccurred())
		Expect(endpoint.Port).To(Equal("8443"))
	})

	It("should fail without a host", func() {
		_, err := reports.ResolveEndpoint("minio-test-reports", "", nil, ports, false)
		Expect(err).To(MatchError(ContainSubstring("failed to locate")))
	})

	It("should fail without ports", func() {
		_, err := reports.ResolveEndpoint("minio-test-reports", "host.name", []string{"/"}, nil, false)
		Expect(err).To(MatchError(ContainSubstring("failed to get the port")))
	})
})

var _ = Describe("Result retrieval", func() {
	var (
		ctx        context.Context
		workDir    string
		resultsDir string
		store      *fakeStore
		retriever  *reports.Retriever
	)

	BeforeEach(func() {
		ctx = context.Background()
		workDir = GinkgoT().TempDir()
		resultsDir = filepath.Join(workDir, "jest-1")
		Expect(os.Mkdir(resultsDir, os.ModePerm)).To(Succeed())
		store = &fakeStore{objects: map[string]string{}}
		retriever = &reports.Retriever{Store: store, Bucket: "reports"}
	})

	It("should read a verdict from the output file", func() {
		file := filepath.Join(workDir, "testrun.txt")
		Expect(os.WriteFile(file, []byte("...\n"+reports.SentinelSuccess+"\n"), 0o600)).To(Succeed())
		Expect(reports.PodSucceeded(file)).To(BeTrue())

		Expect(os.WriteFile(file, []byte(reports.SentinelFailure+"\n"), 0o600)).To(Succeed())
		Expect(reports.PodSucceeded(file)).To(BeFalse())

		Expect(os.WriteFile(file, []byte("nothing here\n"), 0o600)).To(Succeed())
		_, err := reports.PodSucceeded(file)
		Expect(err).To(MatchError(reports.ErrNoVerdict))
	})

	It("should succeed when every pod succeeded", func() {
		store.objects["jest-pod-a.tgz"] = makeArchive(workDir, "jest-pod-a", reports.SentinelSuccess)
		store.objects["jest-pod-b.tgz"] = makeArchive(workDir, "jest-pod-b", reports.SentinelSuccess)
		store.objects["cypress-pod.tgz"] = makeArchive(workDir, "cypress-pod", reports.SentinelFailure)

		success, err := retriever.Retrieve(ctx, "jest", resultsDir, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(success).To(BeTrue())
		Expect(filepath.Join(resultsDir, "jest-pod-a", reports.ResultFileName)).To(BeAnExistingFile())
		Expect(filepath.Join(resultsDir, "jest-pod-a.tgz")).ToNot(BeAnExistingFile())
		Expect(filepath.Join(resultsDir, "cypress-pod")).ToNot(BeAnExistingFile())
	})

	It("should fail when any pod failed", func() {
		store.objects["jest-pod-a.tgz"] = makeArchive(workDir, "jest-pod-a", reports.SentinelSuccess)
		store.objects["jest-pod-b.tgz"] = makeArchive(workDir, "jest-pod-b", reports.SentinelFailure)

		success, err := retriever.Retrieve(ctx, "jest", resultsDir, 2)
		Expect(err).ToNot(HaveOccurred())
		Expect(success).To(BeFalse())
	})

	It("should refuse partial results", func() {
		store.objects["jest-pod-a.tgz"] = makeArchive(workDir, "jest-pod-a", reports.SentinelSuccess)

		_, err := retriever.Retrieve(ctx, "jest", resultsDir, 3)
		Expect(err).To(MatchError(reports.ErrInsufficientResults))
		Expect(err.Error()).To(MatchRegexp(regexp.QuoteMeta("only found 1")))
	})

	It("should purge every object containing the test name", func() {
		store.objects["jest-pod-a.tgz"] = "unused"
		store.objects["jest-extended-pod.tgz"] = "unused"
		store.objects["cypress-pod.tgz"] = "unused"

		Expect(retriever.Purge(ctx, "jest")).To(Succeed())
		Expect(store.removed).To(ConsistOf("jest-pod-a.tgz", "jest-extended-pod.tgz"))
		Expect(store.objects).To(HaveKey("cypress-pod.tgz"))
	})
})
