package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/services/platform"

	"github.com/spf13/cobra"
)

// SSLCommand returns the "project ssl" command group.
func SSLCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssl",
		Short: "Manage the project's SSL certificate",
	}
	cmd.AddCommand(sslShowCommand())
	cmd.AddCommand(sslAddCommand())
	cmd.AddCommand(sslRemoveCommand())
	return cmd
}

func sslShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the installed certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				cert, err := s.Client.SSL.Get(ctx, p.ID)
				if errors.Is(err, domain.ErrNotFound) || (err == nil && cert == nil) {
					fmt.Fprintf(cmd.OutOrStdout(), "No certificate on %q.\n", p.Name)
					return nil
				}
				if err != nil {
					return fmt.Errorf("fetching certificate: %w", err)
				}
				printCertificate(cmd, cert)
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func sslAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Install a certificate",
		Long: `Install a PEM certificate and private key, replacing any existing one.

Example:
  xervo project ssl add -p api --cert fullchain.pem --key privkey.pem`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			certFile, _ := cmd.Flags().GetString("cert")
			keyFile, _ := cmd.Flags().GetString("key")
			opts, err := readCertificate(certFile, keyFile)
			if err != nil {
				return err
			}
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				cert, err := s.Client.SSL.Add(ctx, p.ID, opts)
				if err != nil {
					return fmt.Errorf("installing certificate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Certificate installed on %q.\n", p.Name)
				if cert != nil {
					printCertificate(cmd, cert)
				}
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	cmd.Flags().String("cert", "", "PEM certificate file (required)")
	cmd.Flags().String("key", "", "PEM private key file (required)")
	cmd.MarkFlagRequired("cert")
	cmd.MarkFlagRequired("key")
	return cmd
}

func sslRemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the installed certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdutil.WithProject(cmd, func(ctx context.Context, s *platform.Session, p *domain.Project) error {
				if err := s.Client.SSL.Remove(ctx, p.ID); err != nil {
					return fmt.Errorf("removing certificate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Certificate removed from %q.\n", p.Name)
				return nil
			})
		},
		SilenceUsage: true,
	}
	cmdutil.AddProjectFlag(cmd)
	return cmd
}

func readCertificate(certFile, keyFile string) (domain.AddSSLOpts, error) {
	cert, err := os.ReadFile(certFile)
	if err != nil {
		return domain.AddSSLOpts{}, err
	}
	key, err := os.ReadFile(keyFile)
	if err != nil {
		return domain.AddSSLOpts{}, err
	}
	if !strings.Contains(string(cert), "-----BEGIN CERTIFICATE-----") {
		return domain.AddSSLOpts{}, fmt.Errorf("%s does not contain a PEM certificate", certFile)
	}
	if !strings.Contains(string(key), "PRIVATE KEY-----") {
		return domain.AddSSLOpts{}, fmt.Errorf("%s does not contain a PEM private key", keyFile)
	}
	return domain.AddSSLOpts{Cert: string(cert), Key: string(key)}, nil
}

func printCertificate(cmd *cobra.Command, cert *domain.SSLCertificate) {
	expires := ""
	if !cert.Expires.IsZero() {
		expires = cert.Expires.Local().Format("2006-01-02")
	}
	cmdutil.Detail(cmd.OutOrStdout(), [][2]string{
		{"Domains", strings.Join(cert.Domains, ", ")},
		{"Issuer", cert.Issuer},
		{"Expires", expires},
	})
}
