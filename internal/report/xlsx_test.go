package report_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/stackproof/stackproof/internal/models"
	"github.com/stackproof/stackproof/internal/report"
	"github.com/stackproof/stackproof/internal/report/migrations"
)

var _ = Describe("ExportXLSX", func() {
	var (
		ctx context.Context
		s   *report.Store
		db  *sql.DB
		run *models.Run
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = report.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())
		s = report.NewStore(db)

		run = &models.Run{
			ID:        uuid.NewString(),
			Target:    "staging",
			StartedAt: time.Now().UTC(),
		}
		Expect(s.Runs().Create(ctx, run)).To(Succeed())

		for _, r := range []models.CheckResult{
			{RunID: run.ID, Name: "bucket encryption", Category: "storage", Status: models.StatusPass},
			{RunID: run.ID, Name: "bucket public access", Category: "storage", Status: models.StatusFail, Detail: "public ACLs allowed"},
			{RunID: run.ID, Name: "trail logging", Category: "audit", Status: models.StatusPass},
		} {
			Expect(s.Results().Insert(ctx, &r)).To(Succeed())
		}
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	It("should fail for an unknown run", func() {
		err := report.ExportXLSX(ctx, s, "nope", filepath.Join(GinkgoT().TempDir(), "out.xlsx"))

		Expect(report.IsRunNotFoundError(err)).To(BeTrue())
	})

	It("should write a results sheet and a summary sheet", func() {
		path := filepath.Join(GinkgoT().TempDir(), "out.xlsx")

		err := report.ExportXLSX(ctx, s, run.ID, path)
		Expect(err).NotTo(HaveOccurred())

		f, err := excelize.OpenFile(path)
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		Expect(f.GetSheetList()).To(ConsistOf("Results", "Summary"))

		rows, err := f.GetRows("Results")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0][1]).To(Equal("Category"))
		Expect(rows[1][1]).To(Equal("audit"))
		Expect(rows[2][3]).To(Equal("pass"))

		summary, err := f.GetRows("Summary")
		Expect(err).NotTo(HaveOccurred())
		Expect(summary).To(HaveLen(3))
		Expect(summary[2][0]).To(Equal("storage"))
		Expect(summary[2][1]).To(Equal("1"))
		Expect(summary[2][2]).To(Equal("1"))
	})
})
