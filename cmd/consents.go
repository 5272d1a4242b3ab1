package cmd

import (
	"context"
	"fmt"

	"consent-manager/core/consent"
	"consent-manager/core/store"
	"consent-manager/core/utils"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var consentVisitor string

// consentsCmd manages the stored decision of a visitor.
var consentsCmd = &cobra.Command{
	Use:   "consents",
	Short: "Inspect and change a visitor's stored consents",
	Long: `Works on the store selected by CONSENT_STORE_METHOD. Key-value stores
(local, session, object) keep one blob per visitor; pass the visitor id with
--visitor. The cookie store only exists inside HTTP requests and is not
supported here.`,
}

var consentsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the visitor's consents as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVisitorManager(cmd, func(ctx context.Context, m *consent.Manager) error {
			saveType, _, err := m.LastSaveType(ctx)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(map[string]any{
				"visitor":   consentVisitor,
				"consents":  m.Consents(),
				"confirmed": m.Confirmed(),
				"last_save": saveType,
			}, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		})
	},
}

var consentsAcceptCmd = &cobra.Command{
	Use:   "accept-all",
	Short: "Accept every service and save",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVisitorManager(cmd, func(ctx context.Context, m *consent.Manager) error {
			m.ChangeAll(true)
			return m.SaveConsents(ctx, "accept")
		})
	},
}

var consentsDeclineCmd = &cobra.Command{
	Use:   "decline-all",
	Short: "Decline every optional service and save",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVisitorManager(cmd, func(ctx context.Context, m *consent.Manager) error {
			m.ChangeAll(false)
			return m.SaveConsents(ctx, "decline")
		})
	},
}

var consentsSetCmd = &cobra.Command{
	Use:   "set [service] [true|false]",
	Short: "Set one service's consent and save",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVisitorManager(cmd, func(ctx context.Context, m *consent.Manager) error {
			if m.GetService(args[0]) == nil {
				return fmt.Errorf("unknown service %s", args[0])
			}
			value, ok := utils.ParseBool(args[1])
			if !ok {
				return fmt.Errorf("%q is not a boolean", args[1])
			}
			m.UpdateConsent(args[0], value)
			return m.SaveConsents(ctx, "save")
		})
	},
}

var consentsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the visitor's decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVisitorManager(cmd, func(ctx context.Context, m *consent.Manager) error {
			return m.ResetConsents(ctx)
		})
	},
}

func init() {
	consentsCmd.PersistentFlags().StringVar(&consentVisitor, "visitor", "", "Visitor id the blob is keyed by")
	_ = consentsCmd.MarkPersistentFlagRequired("visitor")

	consentsCmd.AddCommand(consentsShowCmd, consentsAcceptCmd, consentsDeclineCmd, consentsSetCmd, consentsResetCmd)
	RootCmd.AddCommand(consentsCmd)
}

// withVisitorManager opens the configured store for the visitor and runs fn
// on a manager over it.
func withVisitorManager(cmd *cobra.Command, fn func(ctx context.Context, m *consent.Manager) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	st, aux, err := visitorStores(rt, consentVisitor)
	if err != nil {
		return err
	}

	m, err := rt.instance.NewManager(ctx,
		consent.WithStore(st),
		consent.WithAuxiliaryStore(aux),
		consent.WithLogger(rt.logger),
		consent.WithHostname(rt.cfg.Consent.Hostname),
		consent.SkipInitialApply(),
	)
	if err != nil {
		return err
	}
	return fn(ctx, m)
}

// visitorStores builds the blob store and the save-type store of a visitor,
// using the same keys as the HTTP layer.
func visitorStores(rt *runtime, visitor string) (store.Store, store.Store, error) {
	method, err := store.ParseMethod(rt.cfg.Consent.Store.Method)
	if err != nil {
		return nil, nil, err
	}
	if method == store.MethodCookie || method == store.MethodMemory {
		return nil, nil, fmt.Errorf("store method %s cannot be used outside a request", method)
	}

	key := rt.cfg.Consent.Store.Key(visitor)

	st, err := store.New(method, rt.backends, rt.cfg.Consent.Store.Options(key))
	if err != nil {
		return nil, nil, err
	}

	var aux store.Store = store.NewMemoryStore()
	if rt.backends.Session != nil {
		aux = store.NewKeyValueStore(rt.backends.Session, key+store.MetaSuffix)
	}
	return st, aux, nil
}
