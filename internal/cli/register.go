package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/flow"
	"github.com/godel-oidc/authflow/internal/form"
)

func cmdRegister(opts *options) *cobra.Command {
	var (
		fields   []string
		password string
		confirm  string
	)
	c := &cobra.Command{
		Use:   "register",
		Short: "Submit the user registration form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parseFields(fields)
			if err != nil {
				return err
			}
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			pairs = append(pairs,
				form.Pair{Key: flow.PasswordField, Value: password},
				form.Pair{Key: flow.ConfirmPasswordField, Value: confirm},
			)

			err = flow.NewRegisterPage(t.env()).Submit(cmd.Context(), pairs)
			t.dumpCapture()
			if err != nil {
				return err
			}
			fmt.Fprintln(t.out, "Registration submitted")
			return nil
		},
	}
	c.Flags().StringArrayVarP(&fields, "field", "f", nil, "form field, key=value (repeatable, sent in order)")
	c.Flags().StringVar(&password, "password", "", "password")
	c.Flags().StringVar(&confirm, "confirm-password", "", "password confirmation")
	return c
}

// parseFields splits key=value flags, keeping their order.
func parseFields(raw []string) ([]form.Pair, error) {
	pairs := make([]form.Pair, 0, len(raw))
	for _, f := range raw {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q: want key=value", f)
		}
		pairs = append(pairs, form.Pair{Key: k, Value: v})
	}
	return pairs, nil
}
