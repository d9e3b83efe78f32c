package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/loan-eligibility/internal/eligibility"
	"github.com/spigell/loan-eligibility/internal/form"
	"github.com/spigell/loan-eligibility/internal/logger"
	"github.com/spigell/loan-eligibility/internal/report"
	"github.com/spigell/loan-eligibility/internal/resolver"
)

const (
	OutputText = "text"
	OutputJSON = "json"

	PromptYes = "Yes"
	PromptNo  = "No"
)

// fieldFlags maps every applicant field to its command line flag.
var fieldFlags = map[form.Field]string{
	form.FieldApplicantIncome:     "applicant-income",
	form.FieldCoApplicantIncome:   "co-applicant-income",
	form.FieldLoanAmount:          "loan-amount",
	form.FieldLoanTerm:            "loan-term",
	form.FieldCreditScore:         "credit-score",
	form.FieldEmploymentType:      "employment-type",
	form.FieldYearsEmployment:     "years-employment",
	form.FieldExistingLiabilities: "existing-liabilities",
	form.FieldPropertyOwnership:   "property-ownership",
}

var fieldLabels = map[form.Field]string{
	form.FieldApplicantIncome:     "Applicant monthly income",
	form.FieldCoApplicantIncome:   "Co-applicant monthly income",
	form.FieldLoanAmount:          "Loan amount",
	form.FieldLoanTerm:            "Loan term (months)",
	form.FieldCreditScore:         "Credit score",
	form.FieldEmploymentType:      "Employment type",
	form.FieldYearsEmployment:     "Years of employment",
	form.FieldExistingLiabilities: "Existing liabilities",
	form.FieldPropertyOwnership:   "Property ownership",
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict loan eligibility for a single applicant",
	Run: func(cmd *cobra.Command, _ []string) {
		predict(cmd)
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().BoolP("interactive", "i", false, "enter the applicant profile interactively")
	predictCmd.Flags().StringP("output", "o", OutputText, "output format: text or json")

	for _, field := range form.Fields {
		predictCmd.Flags().String(fieldFlags[field], "", fieldLabels[field])
	}
}

type predictionOutput struct {
	Applicant  eligibility.Applicant `json:"applicant"`
	Prediction eligibility.Verdict   `json:"prediction"`
	Confidence float64               `json:"confidence"`
	Reasons    []string              `json:"reasons"`
	Source     resolver.Source       `json:"source"`
	Failure    string                `json:"failure,omitempty"`
	Provider   string                `json:"provider,omitempty"`
	Model      string                `json:"model,omitempty"`
}

func predict(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	output, _ := cmd.Flags().GetString("output")
	if output != OutputText && output != OutputJSON {
		logger.Fatal("unsupported output format", zap.String("output", output))
	}

	applicant, err := form.Decode(config.Applicant)
	if err != nil {
		logger.Fatal("reading applicant from config", zap.Error(err))
	}

	applicant, err = applyFlags(applicant, cmd.Flags())
	if err != nil {
		logger.Fatal("reading applicant from flags", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		applicant, err = promptApplicant(applicant)
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	if err := eligibility.Validate(applicant); err != nil {
		logger.Fatal("invalid applicant", zap.Error(err))
	}

	res, err := newResolver(ctx, config.AI, nil, logger)
	if err != nil {
		logger.Fatal("preparing the resolver", zap.Error(err))
	}

	result := res.Resolve(ctx, applicant)

	if err := writePrediction(os.Stdout, output, applicant, result); err != nil {
		logger.Fatal("writing the prediction", zap.Error(err))
	}
}

// applyFlags applies every explicitly set field flag on top of a.
func applyFlags(a eligibility.Applicant, flags *pflag.FlagSet) (eligibility.Applicant, error) {
	for _, field := range form.Fields {
		name := fieldFlags[field]
		if !flags.Changed(name) {
			continue
		}

		raw, err := flags.GetString(name)
		if err != nil {
			return a, err
		}

		update, err := form.Parse(field, raw)
		if err != nil {
			return a, fmt.Errorf("--%s: %w", name, err)
		}

		if a, err = form.Apply(a, update); err != nil {
			return a, fmt.Errorf("--%s: %w", name, err)
		}
	}

	return a, nil
}

func writePrediction(w io.Writer, output string, a eligibility.Applicant, res resolver.Resolution) error {
	if output == OutputText {
		return report.Render(w, a, res)
	}

	out := predictionOutput{
		Applicant:  a,
		Prediction: res.Verdict,
		Confidence: res.Confidence,
		Reasons:    res.Reasons,
		Source:     res.Source,
		Provider:   res.Provider,
		Model:      res.Model,
	}
	if res.Degraded() {
		out.Failure = string(res.Failure)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func promptApplicant(a eligibility.Applicant) (eligibility.Applicant, error) {
	for _, field := range form.Fields {
		raw, err := promptField(field, a)
		if err != nil {
			return a, err
		}

		update, err := form.Parse(field, raw)
		if err != nil {
			return a, err
		}

		if a, err = form.Apply(a, update); err != nil {
			return a, err
		}
	}

	return a, nil
}

func promptField(field form.Field, a eligibility.Applicant) (string, error) {
	label := fieldLabels[field]

	if items := choices(field); items != nil {
		selectPrompt := promptui.Select{
			Label:     label,
			Items:     items,
			CursorPos: indexOf(items, currentValue(field, a)),
		}
		_, value, err := selectPrompt.Run()
		return value, err
	}

	prompt := promptui.Prompt{
		Label:   label,
		Default: currentValue(field, a),
		Validate: func(input string) error {
			update, err := form.Parse(field, input)
			if err != nil {
				return err
			}
			_, err = form.Apply(a, update)
			return err
		},
	}
	return prompt.Run()
}

func choices(field form.Field) []string {
	var items []string
	switch field {
	case form.FieldLoanTerm:
		for _, term := range eligibility.LoanTerms {
			items = append(items, strconv.Itoa(int(term)))
		}
	case form.FieldCreditScore:
		for _, band := range eligibility.CreditBands {
			items = append(items, string(band))
		}
	case form.FieldEmploymentType:
		items = []string{string(eligibility.Salaried), string(eligibility.SelfEmployed)}
	case form.FieldPropertyOwnership:
		items = []string{string(eligibility.Rented), string(eligibility.Owned)}
	case form.FieldExistingLiabilities:
		items = []string{PromptNo, PromptYes}
	}
	return items
}

func currentValue(field form.Field, a eligibility.Applicant) string {
	switch field {
	case form.FieldApplicantIncome:
		return strconv.FormatFloat(a.ApplicantIncome, 'f', -1, 64)
	case form.FieldCoApplicantIncome:
		return strconv.FormatFloat(a.CoApplicantIncome, 'f', -1, 64)
	case form.FieldLoanAmount:
		return strconv.FormatFloat(a.LoanAmount, 'f', -1, 64)
	case form.FieldLoanTerm:
		return strconv.Itoa(int(a.LoanTerm))
	case form.FieldCreditScore:
		return string(a.CreditScore)
	case form.FieldEmploymentType:
		return string(a.EmploymentType)
	case form.FieldYearsEmployment:
		return strconv.FormatFloat(a.YearsEmployment, 'f', -1, 64)
	case form.FieldExistingLiabilities:
		if a.ExistingLiabilities {
			return PromptYes
		}
		return PromptNo
	case form.FieldPropertyOwnership:
		return string(a.PropertyOwnership)
	}
	return ""
}

func indexOf(items []string, value string) int {
	for i, item := range items {
		if item == value {
			return i
		}
	}
	return 0
}
