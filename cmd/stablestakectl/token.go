package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

func newTokenCmd(load configLoader) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token <address>",
		Short: "Mint a bearer token identifying a caller",
		Long:  "Signs an HS256 token whose subject is the caller address, using the node's [Auth] secret, issuer and audience.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(args[0]) {
				return fmt.Errorf("invalid address %q", args[0])
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			secret := cfg.Auth.Secret()
			if secret == "" {
				return fmt.Errorf("no HMAC secret configured; set [Auth] HMACSecret or the %s variable", cfg.Auth.HMACSecretEnv)
			}
			now := time.Now()
			claims := jwt.RegisteredClaims{
				Subject:   common.HexToAddress(args[0]).Hex(),
				Issuer:    strings.TrimSpace(cfg.Auth.Issuer),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			}
			if aud := strings.TrimSpace(cfg.Auth.Audience); aud != "" {
				claims.Audience = jwt.ClaimStrings{aud}
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}
