// SPDX-FileCopyrightText: 2025 Intel Corporation
//
// SPDX-License-Identifier: Apache-2.0

package secrets_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SNL-GMS/GMS-PI23/internal/secrets"
)

var _ = Describe("File Secrets Saver", func() {
	var (
		dir   string
		saver *secrets.FileSaver
		creds secrets.Credentials
	)

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "credentials")
		saver = secrets.NewFileSaver(dir)
		creds = secrets.Credentials{AccessKey: "access", SecretKey: "secret"}
	})

	Context("Secrets saver", func() {
		It("should return the saved secret", func() {
			Expect(saver.SaveSecret("inst", creds)).To(Succeed())
			result, ok, err := saver.GetSecret("inst")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(result).To(Equal(creds))
		})

		It("should keep the secret private", func() {
			Expect(saver.SaveSecret("inst", creds)).To(Succeed())
			info, err := os.Stat(filepath.Join(dir, "inst.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})

		It("should report a missing secret", func() {
			_, ok, err := saver.GetSecret("other")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should reject incomplete secrets", func() {
			Expect(os.MkdirAll(dir, 0o700)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "inst.yaml"), []byte("accessKey: access\n"), 0o600)).To(Succeed())
			_, ok, err := saver.GetSecret("inst")
			Expect(err).To(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("should remove the secret", func() {
			Expect(saver.SaveSecret("inst", creds)).To(Succeed())
			Expect(saver.RemoveSecret("inst")).To(Succeed())
			Expect(saver.RemoveSecret("inst")).To(Succeed())
			_, ok, err := saver.GetSecret("inst")
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
