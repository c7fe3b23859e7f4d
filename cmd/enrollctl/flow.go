package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HSouheill/enrollment_backend/client"
	"github.com/HSouheill/enrollment_backend/models"
)

// flowCmd walks one enrollment through the client state machine, prompting on stdin.
func flowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flow",
		Short: "Interactively enroll, verify and pay",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlow(client.NewFlow(apiClient(cmd)), cmd)
		},
	}
}

func runFlow(f *client.Flow, cmd *cobra.Command) error {
	ctx := cmd.Context()
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	for f.State() != client.StateDone {
		var err error
		switch f.State() {
		case client.StateCollectingInfo:
			info := models.EnrollRequest{
				Name:    prompt(in, out, "Name"),
				Country: prompt(in, out, "Country"),
				Mobile:  prompt(in, out, "Mobile"),
				Email:   prompt(in, out, "Email"),
			}
			if err = f.SubmitInfo(ctx, info); err == nil {
				fmt.Fprintln(out, f.Message())
			}

		case client.StateAwaitingCode:
			if code := f.DemoCode(); code != "" {
				fmt.Fprintf(out, "Demo code: %s\n", code)
			}
			err = f.SubmitCode(ctx, prompt(in, out, "Code"))

		case client.StateAwaitingPayment:
			var order *models.CreateOrderResponse
			if order, err = f.StartPayment(ctx); err != nil {
				break
			}
			fmt.Fprintf(out, "Order %s for %d %s. Complete checkout, then paste the callback.\n", order.ID, order.Amount, order.Currency)
			err = f.CompletePayment(ctx, client.PaymentCallback{
				PaymentID: prompt(in, out, "Payment id"),
				OrderID:   order.ID,
				Signature: prompt(in, out, "Signature"),
			})
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", describeError(err))
			if strings.ToLower(prompt(in, out, "Try again? [y/N]")) != "y" {
				return err
			}
		}
	}

	fmt.Fprintf(out, "%s. Welcome, %s\n", f.Message(), f.Name())
	fmt.Fprintf(out, "Session token: %s\n", f.SessionToken())
	return nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) string {
	fmt.Fprintf(out, "%s: ", label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
