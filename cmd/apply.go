package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"consent-manager/core/catalog"
	"consent-manager/core/consent"
	"consent-manager/core/logger"
	"consent-manager/core/reconcile"
	"consent-manager/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	applyCatalog  string
	applyConsents []string
	applyAccept   bool
	applyService  string
	applyOutput   string
	applyDryRun   bool
)

// applyCmd rewrites an HTML document for a set of consents.
var applyCmd = &cobra.Command{
	Use:   "apply [file.html]",
	Short: "Apply consents to an HTML document",
	Long: `Reconciles the consent-managed elements of an HTML document (scripts,
iframes, placeholders and in-place elements marked with data-name) with a
set of consents, without touching any store.

Reads the document from the file argument or stdin when omitted.

Examples:
  # Accept analytics, decline everything else
  apply page.html --catalog configs/default.yaml --consent analytics=true

  # Show what accepting everything would change
  apply page.html --catalog configs/default.yaml --accept-all --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringVar(&applyCatalog, "catalog", "configs/default.yaml", "Catalog file (yaml or json)")
	applyCmd.Flags().StringArrayVar(&applyConsents, "consent", nil, "Consent as service=bool (repeatable)")
	applyCmd.Flags().BoolVar(&applyAccept, "accept-all", false, "Accept every service before applying --consent values")
	applyCmd.Flags().StringVar(&applyService, "service", "", "Only reconcile this service")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "Write the document to this file instead of stdout")
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Print the plan instead of the document")

	RootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	l, err := logger.New(&logger.Config{Level: "info", Format: "console"})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	cfg, err := catalog.Load(applyCatalog)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open document: %w", err)
		}
		defer f.Close()
		in = f
	}
	doc, err := reconcile.Parse(bufio.NewReader(in))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	m, err := consent.New(ctx, cfg, consent.WithDocument(doc), consent.WithLogger(l), consent.SkipInitialApply())
	if err != nil {
		return err
	}
	if err := setConsents(m, applyAccept, applyConsents); err != nil {
		return err
	}
	// confirms the decision against an in-memory store
	if err := m.SaveConsents(ctx, "cli"); err != nil {
		return err
	}

	opts := consent.ApplyOptions{Service: applyService}
	if applyDryRun {
		printPlan(l, m.Plan(opts))
		return nil
	}

	changed, err := m.ApplyConsents(ctx, opts)
	if err != nil {
		return err
	}
	l.Info("Document reconciled", zap.Int("changed", changed))

	out := cmd.OutOrStdout()
	if applyOutput != "" {
		f, err := os.Create(applyOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	return doc.Render(out)
}

// setConsents applies --accept-all and then each service=bool pair.
func setConsents(m *consent.Manager, acceptAll bool, pairs []string) error {
	if acceptAll {
		m.ChangeAll(true)
	}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("invalid consent %q, expected service=bool", pair)
		}
		if m.GetService(name) == nil {
			return fmt.Errorf("%w: %s", catalog.ErrUnknownService, name)
		}
		v, ok := utils.ParseBool(value)
		if !ok {
			return fmt.Errorf("invalid consent %q, %q is not a boolean", pair, value)
		}
		m.UpdateConsent(name, v)
	}
	return nil
}

// printPlan logs the decisions, with at most five element actions each.
func printPlan(l *zap.Logger, decisions []consent.Decision) {
	for _, d := range decisions {
		l.Info("Service decision",
			zap.String("service", d.Service),
			zap.Bool("consent", d.Consent),
			zap.Bool("required", d.Required),
			zap.Bool("changed", d.Changed),
			zap.Int("elements", len(d.Elements)),
		)

		maxShow := 5
		if len(d.Elements) < maxShow {
			maxShow = len(d.Elements)
		}
		for _, a := range d.Elements[:maxShow] {
			l.Info("Element action",
				zap.String("action", string(a.Type)),
				zap.String("tag", a.Tag),
				zap.String("kind", a.Kind.String()),
				zap.String("reason", a.Reason),
			)
		}
		if len(d.Elements) > maxShow {
			l.Info("Additional actions not shown", zap.Int("count", len(d.Elements)-maxShow))
		}
	}
}
