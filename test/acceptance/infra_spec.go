package main

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/checks"
)

var _ = Describe("Infrastructure", func() {
	for _, check := range checks.All() {
		c := check
		It(fmt.Sprintf("[%s] %s", c.Category, c.Name), func(ctx context.Context) {
			err := c.Fn(ctx, suiteDeps)
			if checks.IsSkipError(err) {
				Skip(err.Error())
			}
			Expect(err).NotTo(HaveOccurred())
		})
	}
})
