package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/appapi"
)

var _ = Describe("Application API", func() {
	BeforeEach(func() {
		if appClient == nil {
			Skip("application URL not configured")
		}
	})

	It("should round-trip a document through the API", func(ctx context.Context) {
		key := fmt.Sprintf("acceptance-%s.txt", uuid.NewString())
		body := []byte("stackproof acceptance payload")

		By("uploading")
		Expect(appClient.Upload(ctx, key, body)).To(Succeed())
		defer appClient.Delete(ctx, key)

		By("listing")
		objects, err := appClient.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		keys := make([]string, 0, len(objects))
		for _, o := range objects {
			keys = append(keys, o.Key)
		}
		Expect(keys).To(ContainElement(key))

		By("downloading")
		got, err := appClient.Get(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(body))

		By("deleting")
		Expect(appClient.Delete(ctx, key)).To(Succeed())

		_, err = appClient.Get(ctx, key)
		Expect(appapi.IsObjectNotFoundError(err)).To(BeTrue())
	})

	It("should reject requests without a valid token", func(ctx context.Context) {
		anonymous := appapi.NewClient(cfg.AppURL, "")

		_, err := anonymous.List(ctx)

		var unauthorized *appapi.UnauthorizedError
		Expect(err).To(HaveOccurred())
		Expect(errors.As(err, &unauthorized)).To(BeTrue())
	})
})
