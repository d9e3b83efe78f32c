// Package report renders a resolved verdict for terminal output.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/resolver"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency formats a dollar amount rounded to whole units, e.g. "$150,000".
func FormatCurrency(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	rounded := int64(math.Round(v))
	if rounded < 0 {
		return printer.Sprintf("-$%d", -rounded)
	}
	return printer.Sprintf("$%d", rounded)
}

// FormatConfidence renders a [0,1] confidence as a whole percentage.
func FormatConfidence(c float64) string {
	return fmt.Sprintf("%.0f%%", c*100)
}

// Render writes the applicant summary followed by the verdict.
func Render(w io.Writer, a eligibility.Applicant, res resolver.Resolution) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	liabilities := "No"
	if a.ExistingLiabilities {
		liabilities = "Yes"
	}

	rows := [][2]string{
		{"Applicant income", FormatCurrency(a.ApplicantIncome) + "/mo"},
		{"Co-applicant income", FormatCurrency(a.CoApplicantIncome) + "/mo"},
		{"Loan amount", FormatCurrency(a.LoanAmount)},
		{"Loan term", fmt.Sprintf("%d months", int(a.LoanTerm))},
		{"Credit score", string(a.CreditScore)},
		{"Employment", fmt.Sprintf("%s, %g years", a.EmploymentType, a.YearsEmployment)},
		{"Existing liabilities", liabilities},
		{"Property", string(a.PropertyOwnership)},
	}

	fmt.Fprintln(tw, "Applicant")
	for _, row := range rows {
		fmt.Fprintf(tw, "  %s:\t%s\n", row[0], row[1])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\nVerdict: %s (confidence %s)\n", res.Verdict, FormatConfidence(res.Confidence))
	for i, reason := range res.Reasons {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, reason)
	}
	fmt.Fprintf(&b, "Source: %s\n", describeSource(res))

	_, err := io.WriteString(w, b.String())
	return err
}

func describeSource(res resolver.Resolution) string {
	if !res.Degraded() {
		return fmt.Sprintf("%s model %s", res.Provider, res.Model)
	}
	return fmt.Sprintf("local scoring (%s)", res.Failure)
}
