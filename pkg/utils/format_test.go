package utils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studymate-app/studymate/pkg/utils"
)

var _ = Describe("Formatting", func() {
	Context("FormatFileSize", func() {
		It("renders bytes as kilobytes with two decimals", func() {
			Expect(utils.FormatFileSize(1024)).To(Equal("1.00 KB"))
			Expect(utils.FormatFileSize(1536)).To(Equal("1.50 KB"))
			Expect(utils.FormatFileSize(0)).To(Equal("0.00 KB"))
		})
	})

	Context("FormatUploadDate", func() {
		DescribeTable("parses the backend's date shapes",
			func(raw, expected string) {
				Expect(utils.FormatUploadDate(raw)).To(Equal(expected))
			},
			Entry("isoformat with microseconds", "2025-11-03T10:15:30.123456", "Nov 3, 2025"),
			Entry("isoformat without fraction", "2025-01-09T23:59:59", "Jan 9, 2025"),
			Entry("RFC3339", "2025-06-15T12:00:00Z", "Jun 15, 2025"),
		)

		It("returns unparseable input unchanged", func() {
			Expect(utils.FormatUploadDate("yesterday")).To(Equal("yesterday"))
			Expect(utils.FormatUploadDate("")).To(Equal(""))
		})
	})
})
