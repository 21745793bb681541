package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configKeys are the settings changeable with "config set"
var configKeys = map[string]func(c *config.Config, value string) error{
	"business.name":         func(c *config.Config, v string) error { c.Business.Name = v; return nil },
	"business.email":        func(c *config.Config, v string) error { c.Business.Email = v; return nil },
	"business.address":      func(c *config.Config, v string) error { c.Business.Address = v; return nil },
	"business.bank_details": func(c *config.Config, v string) error { c.Business.BankDetails = v; return nil },
	"business.contact":      func(c *config.Config, v string) error { c.Business.Contact = v; return nil },
	"invoice.number_prefix": func(c *config.Config, v string) error {
		if strings.TrimSpace(v) == "" {
			return errors.New("invoice prefix is required")
		}
		c.Invoice.NumberPrefix = strings.TrimSpace(v)
		return nil
	},
	"invoice.default_due_days": func(c *config.Config, v string) error {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return errors.Newf("due days must be a positive number, got %q", v)
		}
		c.Invoice.DefaultDueDays = days
		return nil
	},
	"invoice.output_dir": func(c *config.Config, v string) error {
		if v == "" {
			return errors.New("output directory is required")
		}
		c.Invoice.OutputDir = v
		return nil
	},
	"invoice.notes":                func(c *config.Config, v string) error { c.Invoice.Notes = v; return nil },
	"invoice.payment_instructions": func(c *config.Config, v string) error { c.Invoice.PaymentInstructions = v; return nil },
	"invoice.payment_label":        func(c *config.Config, v string) error { c.Invoice.PaymentLabel = v; return nil },
	"invoice.terms_title":          func(c *config.Config, v string) error { c.Invoice.TermsTitle = v; return nil },
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := requireApp()
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(a.Config)
				if err != nil {
					return errors.Wrap(err, "failed to encode config")
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := requireApp()
				if err != nil {
					return err
				}
				path := a.ConfigPath
				if path == "" {
					path = config.DefaultConfigPath()
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change a setting and save the config file",
			Long: fmt.Sprintf(`Change a setting and save the config file. New invoices pick it up immediately.

Keys: %s`, strings.Join(sortedConfigKeys(), ", ")),
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := requireApp()
				if err != nil {
					return err
				}
				set, ok := configKeys[args[0]]
				if !ok {
					return errors.Newf("unknown config key %q", args[0])
				}
				if err := set(a.Config, args[1]); err != nil {
					return err
				}
				if err := a.SaveConfig(); err != nil {
					return errors.Wrap(err, "failed to save config")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %s\n", args[0], args[1])
				return nil
			},
		},
	)
	return cmd
}

func sortedConfigKeys() []string {
	keys := lo.Keys(configKeys)
	sort.Strings(keys)
	return keys
}
