package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Upload notifications", func() {
	BeforeEach(func() {
		if appClient == nil {
			Skip("application URL not configured")
		}
		if mailClient == nil {
			Skip("mailbox URL not configured")
		}
	})

	It("should deliver a notification email for every upload", func(ctx context.Context) {
		key := fmt.Sprintf("notify-%s.txt", uuid.NewString())
		subject := fmt.Sprintf("Document %s uploaded", key)

		Expect(appClient.Upload(ctx, key, []byte("notification payload"))).To(Succeed())
		defer appClient.Delete(ctx, key)

		message, err := mailClient.WaitForMessage(ctx, cfg.Recipient, subject)
		Expect(err).NotTo(HaveOccurred())
		Expect(message.ToEmail).To(ContainSubstring(cfg.Recipient))
		Expect(message.Subject).To(Equal(subject))

		body, err := mailClient.MessageText(ctx, message.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(ContainSubstring(key))
	})
})
