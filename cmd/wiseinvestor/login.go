package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/p2sg/wiseinvestor/internal/store"
	"github.com/p2sg/wiseinvestor/internal/types"
)

var loginToken string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Cache an access token for the terminal commands",
	Long: "Stores an access token in the local token cache under the active profile.\n" +
		"The token is read from --token or WISEINVESTOR_TOKEN.",
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the cached access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token issued by the analytics API")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	token := loginToken
	if token == "" {
		token = s.cfg.Analytics.Token
	}
	if token == "" {
		return errors.New("a token is required (--token or WISEINVESTOR_TOKEN)")
	}

	var expires time.Time
	if ttl := time.Duration(s.cfg.Store.TokenTTL); ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	saved, err := s.store.SaveToken(ctx, types.CachedToken{
		Profile:     s.profile,
		AccessToken: token,
		APIURL:      s.cfg.Analytics.BaseURL,
		ExpiresAt:   expires,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), saved)
	}
	if saved.ExpiresAt.IsZero() {
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as profile %q.\n", saved.Profile)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as profile %q (expires %s).\n",
			saved.Profile, humanize.Time(saved.ExpiresAt))
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.store.DeleteToken(cmd.Context(), s.profile)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "Profile %q is not logged in.\n", s.profile)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged out of profile %q.\n", s.profile)
	return nil
}
