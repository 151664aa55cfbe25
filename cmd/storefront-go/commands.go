package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/application/startup"
	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront-go",
		Short:         "Storefront state service: carts, wishlists, sessions and theme",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newProfileCommand(), newKeygenCommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := startup.Initialize(); err != nil {
				return fmt.Errorf("application startup failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Application has shut down gracefully.")
			return nil
		},
	}
}

func newKeygenCommand() *cobra.Command {
	var length int
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random value suitable for STORAGE_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := security.GenerateSecureKey(length)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	cmd.Flags().IntVar(&length, "length", 64, "key length in hex characters")
	return cmd
}

// profileEnv is the persistent state a profile command works on
type profileEnv struct {
	backend kv.Backend
	manager *storefront.Manager
}

func (e *profileEnv) Close() error { return e.backend.Close() }

// openProfiles connects the configured backend without starting the server.
// Writes land in the same keys the server reads.
func openProfiles(ctx context.Context) (*profileEnv, error) {
	backend, err := container.OpenBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	sealer, err := container.NewSealer()
	if err != nil {
		backend.Close()
		return nil, err
	}
	manager := storefront.NewManager(backend, sealer, nil, nil, storefront.Config{},
		logging.NewDiscardLogger(), performance.NewTracker(nil))
	return &profileEnv{backend: backend, manager: manager}, nil
}

// withProfile runs fn against the profile named by args[0]
func withProfile(cmd *cobra.Command, args []string, fn func(ctx context.Context, sf *storefront.Storefront) error) error {
	profileID := args[0]
	if !security.ValidProfileID(profileID) {
		return fmt.Errorf("invalid profile id %q", profileID)
	}

	ctx := cmd.Context()
	env, err := openProfiles(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	sf, err := env.manager.Get(ctx, profileID)
	if err != nil {
		return err
	}
	return fn(ctx, sf)
}

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect or modify a stored browser profile",
	}

	show := &cobra.Command{
		Use:   "show <profile-id>",
		Short: "Print the profile's cart, wishlist and sessions as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfile(cmd, args, func(ctx context.Context, sf *storefront.Storefront) error {
				return writeSnapshot(ctx, cmd.OutOrStdout(), sf)
			})
		},
	}

	var server string
	clearCart := &cobra.Command{
		Use:   "clear-cart <profile-id>",
		Short: "Empty the profile's cart, through a running server with --server",
		Long: `Empty the profile's cart.

With --server the running service clears it, so its in-memory cart and
connected event streams see the change. Without it the stored cart is
cleared directly; a server that has the profile loaded keeps its own copy
and writes it back on the next cart change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if server != "" {
				return clearCartRemote(cmd, server, args[0])
			}
			return withProfile(cmd, args, func(ctx context.Context, sf *storefront.Storefront) error {
				if err := sf.Cart.ClearCart(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "cart cleared for %s\n", sf.ProfileID)
				return nil
			})
		},
	}

	clearCart.Flags().StringVar(&server, "server", "", "base URL of a running storefront-go, e.g. http://localhost:8080")

	var admin bool
	logout := &cobra.Command{
		Use:   "logout <profile-id>",
		Short: "End the profile's customer session, or its admin session with --admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProfile(cmd, args, func(ctx context.Context, sf *storefront.Storefront) error {
				store := sf.Customer
				if admin {
					store = sf.Admin
				}
				if err := store.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s session ended for %s\n", store.Namespace().Label, sf.ProfileID)
				return nil
			})
		},
	}
	logout.Flags().BoolVar(&admin, "admin", false, "end the admin session instead of the customer session")

	cmd.AddCommand(show, clearCart, logout)
	return cmd
}

// clearCartRemote asks a running server to clear the cart it holds
func clearCartRemote(cmd *cobra.Command, server, profileID string) error {
	if !security.ValidProfileID(profileID) {
		return fmt.Errorf("invalid profile id %q", profileID)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), config.APITimeout)
	defer cancel()

	endpoint := strings.TrimRight(server, "/") + "/api/v1/cart"
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(middleware.ProfileHeader, profileID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("clear cart via %s: %w", server, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("clear cart via %s: %s: %s", server, resp.Status, strings.TrimSpace(string(body)))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cart cleared for %s via %s\n", profileID, server)
	return nil
}

type sessionSnapshot struct {
	State any `json:"state"`
	User  any `json:"user,omitempty"`
}

type profileSnapshot struct {
	ProfileID string          `json:"profileId"`
	Cart      any             `json:"cart"`
	CartTotal float64         `json:"cartTotal"`
	Wishlist  any             `json:"wishlist"`
	Customer  sessionSnapshot `json:"customer"`
	Admin     sessionSnapshot `json:"admin"`
}

// writeSnapshot prints the profile without its bearer tokens
func writeSnapshot(ctx context.Context, w io.Writer, sf *storefront.Storefront) error {
	snap := profileSnapshot{
		ProfileID: sf.ProfileID,
		Cart:      sf.Cart.Items(),
		CartTotal: sf.Cart.CartTotal(),
		Wishlist:  sf.Wishlist.Items(),
		Customer:  sessionSnapshot{State: sf.Customer.State(ctx), User: sf.Customer.User(ctx)},
		Admin:     sessionSnapshot{State: sf.Admin.State(ctx), User: sf.Admin.User(ctx)},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
