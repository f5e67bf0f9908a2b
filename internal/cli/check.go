// Package cli provides the check subcommand for cloudrules.
package cli

import (
	"fmt"

	"github.com/p4th0r/cloudrules/internal/config"
	"github.com/p4th0r/cloudrules/internal/logging"
	"github.com/p4th0r/cloudrules/internal/rulefile"
	"github.com/p4th0r/cloudrules/internal/rules"
	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check subcommand.
func NewCheckCmd() *cobra.Command {
	var (
		file     string
		dir      string
		provider string
		query    rules.Query
	)

	cmd := &cobra.Command{
		Use:   "check <host|ip>",
		Short: "Check whether a destination is allowed by a generated rule file",
		Long: `Loads a generated rule file and reports the first rule that allows the
destination. remote-domains rules cover the domain and all its subdomains,
remote-hosts rules match exactly, remote-addresses rules match IPs and CIDRs.

Exits non-zero when no rule allows the destination.

Example:
  cloudrules check outlook.office.com --protocol tcp --port 443
  cloudrules check 52.96.10.1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = rulefile.Path(dir, provider)
			}
			query.Target = args[0]
			return runCheck(cmd, file, query)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Rule file to check (default: <output-dir>/cloud_rules_<provider>.lsrules)")
	cmd.Flags().StringVar(&dir, "output-dir", config.DefaultOutputDir, "Directory holding the rule file")
	cmd.Flags().StringVar(&provider, "provider", config.DefaultProvider, "Provider name of the rule file")
	cmd.Flags().StringVar(&query.Protocol, "protocol", "", "Protocol to check (tcp or udp; default any)")
	cmd.Flags().IntVar(&query.Port, "port", 0, "Port to check (default any)")

	return cmd
}

func runCheck(cmd *cobra.Command, path string, q rules.Query) error {
	if q.Protocol != "" && q.Protocol != "tcp" && q.Protocol != "udp" {
		return fmt.Errorf("invalid protocol %q: use tcp or udp", q.Protocol)
	}
	if q.Port < 0 || q.Port > 65535 {
		return fmt.Errorf("port %d out of range 0-65535 (0 = any)", q.Port)
	}

	f, err := rulefile.Read(path)
	if err != nil {
		return err
	}
	m := rules.NewMatcher(f.Rules)
	if skipped := m.Skipped(); len(skipped) > 0 {
		logger := logging.NewLogger(cmd.ErrOrStderr(), false, false)
		for _, err := range skipped {
			logger.Warn("%v", err)
		}
		logger.Warn("%d of %d rules in %s cannot be matched and were ignored", len(skipped), len(f.Rules), path)
	}

	rule, ok := m.Match(q)
	if !ok {
		return fmt.Errorf("%s is not allowed by %s (%s)", describe(q), path, m.Summary())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s is allowed by %s rule: %s\n", describe(q), rule.Kind.Key(), rule)
	return nil
}

func describe(q rules.Query) string {
	s := q.Target
	if q.Protocol != "" || q.Port != 0 {
		proto, port := q.Protocol, "any"
		if proto == "" {
			proto = "any"
		}
		if q.Port != 0 {
			port = fmt.Sprint(q.Port)
		}
		s += fmt.Sprintf(" (%s/%s)", proto, port)
	}
	return s
}
