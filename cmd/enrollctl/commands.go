package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HSouheill/enrollment_backend/client"
	"github.com/HSouheill/enrollment_backend/models"
)

func apiClient(cmd *cobra.Command) *client.APIClient {
	server, _ := cmd.Flags().GetString("server")
	return client.New(server)
}

// printResult writes v as JSON when --json is set, otherwise the plain lines.
func printResult(cmd *cobra.Command, v interface{}, lines ...string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	return nil
}

// describeError adds the server's suggested fix when there is one.
func describeError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Solution != "" {
		return fmt.Errorf("%w\nsolution: %s", err, apiErr.Solution)
	}
	return err
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and database status",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).Health(cmd.Context())
			if err != nil {
				return describeError(err)
			}
			return printResult(cmd, res,
				fmt.Sprintf("Status:   %s", res.Status),
				fmt.Sprintf("Database: %s", res.DBStatus),
			)
		},
	}
}

func enrollCmd() *cobra.Command {
	var req models.EnrollRequest
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Submit the enrollment form and request a code",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).Enroll(cmd.Context(), req)
			if err != nil {
				return describeError(err)
			}
			lines := []string{res.Message, "Enrollment: " + res.EnrollmentID, "Session:    " + res.SessionToken}
			if res.OTP != "" {
				lines = append(lines, "Code:       "+res.OTP)
			}
			return printResult(cmd, res, lines...)
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Country, "country", "", "Country")
	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "10 digit mobile number")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")

	return cmd
}

func verifyCmd() *cobra.Command {
	var req models.VerifyRequest
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the one-time code sent to a mobile number",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).Verify(cmd.Context(), req)
			if err != nil {
				return describeError(err)
			}
			return printResult(cmd, res, fmt.Sprintf("%s (%s)", res.Message, res.Name))
		},
	}

	cmd.Flags().StringVar(&req.Mobile, "mobile", "", "10 digit mobile number")
	cmd.Flags().StringVar(&req.OTP, "otp", "", "One-time code")
	cmd.Flags().StringVar(&req.EnrollmentID, "enrollment-id", "", "Enrollment to verify (defaults to the newest for the mobile)")

	return cmd
}

func orderCmd() *cobra.Command {
	var req models.CreateOrderRequest
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Create a payment order for the course fee",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).CreateOrder(cmd.Context(), req)
			if err != nil {
				return describeError(err)
			}
			return printResult(cmd, res, fmt.Sprintf("Order %s: %d %s", res.ID, res.Amount, res.Currency))
		},
	}

	cmd.Flags().Int64Var(&req.Amount, "amount", 0, "Amount in minor units (default course fee)")
	cmd.Flags().StringVar(&req.Currency, "currency", "", "Currency code (default course currency)")

	return cmd
}

func verifyPaymentCmd() *cobra.Command {
	var req models.VerifyPaymentRequest
	cmd := &cobra.Command{
		Use:   "verify-payment",
		Short: "Submit a checkout callback for signature verification",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).VerifyPayment(cmd.Context(), req)
			if err != nil {
				return describeError(err)
			}
			return printResult(cmd, res, fmt.Sprintf("%s. Welcome, %s", res.Message, res.Name))
		},
	}

	cmd.Flags().StringVar(&req.PaymentID, "payment-id", "", "Gateway payment id")
	cmd.Flags().StringVar(&req.OrderID, "order-id", "", "Gateway order id")
	cmd.Flags().StringVar(&req.Signature, "signature", "", "Gateway signature")
	cmd.Flags().StringVar(&req.UserData.Email, "email", "", "Enrolled email")
	cmd.Flags().StringVar(&req.UserData.Mobile, "mobile", "", "Enrolled mobile number")

	return cmd
}

func statusCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the enrollment dashboard for a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := apiClient(cmd).Enrollment(cmd.Context(), token)
			if err != nil {
				return describeError(err)
			}
			en := res.Enrollment
			return printResult(cmd, res,
				fmt.Sprintf("Name:     %s", en.Name),
				fmt.Sprintf("Email:    %s", en.Email),
				fmt.Sprintf("Verified: %t", en.IsVerified),
				fmt.Sprintf("Payment:  %s", en.PaymentStatus),
			)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token returned by enroll")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize [file.pdf]",
		Short: "Summarize a PDF's text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			res, err := apiClient(cmd).Summarize(cmd.Context(), filepath.Base(args[0]), data)
			if err != nil {
				return describeError(err)
			}
			return printResult(cmd, res,
				res.Summary,
				"",
				fmt.Sprintf("(%s, %d characters processed)", res.Model, res.CharsProcessed),
			)
		},
	}
}
