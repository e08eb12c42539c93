package cliapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	coreapp "projectjs/internal/core/app"
	pjerrors "projectjs/internal/core/errors"
	"projectjs/internal/data/history"
	"projectjs/internal/shared/observability"
	"projectjs/internal/shared/util"
	"projectjs/internal/shared/version"
	"projectjs/internal/ui/browse"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Parse and verify a manifest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, manifestArg(args))
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			pf, reg, err := a.Load(commandContext(cmd))
			if err != nil {
				fmt.Fprintf(out, "%s %s\n  %v\n", failStyle.Render("invalid"), a.Paths.ManifestPath, err)
				return exitError(exitFailure, "%s: %s", a.Paths.ManifestPath, codeOrMessage(err))
			}
			d := pf.Descriptor()
			fmt.Fprintf(out, "%s %s (%s %s, %d packages, %d classes)\n",
				okStyle.Render("ok"), a.Paths.ManifestPath, d.Schema.Name, d.Schema.Version, reg.Len(), reg.ClassCount())
			return nil
		},
	}
}

func newRegistryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry [manifest]",
		Short: "Build and print the package registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			outPath, _ := cmd.Flags().GetString("out")

			a, err := openApp(cmd, opts, manifestArg(args), coreapp.WithRegistryOptions(registryOverrides(cmd)))
			if err != nil {
				return err
			}
			defer a.Close()

			_, reg, err := a.Load(commandContext(cmd))
			if err != nil {
				return exitError(exitFailure, "%v", err)
			}

			out := cmd.OutOrStdout()
			if !asJSON && outPath == "" {
				printRegistry(out, reg)
				return nil
			}

			data, err := json.MarshalIndent(reg, "", "  ")
			if err != nil {
				return exitError(exitFailure, "encode registry: %v", err)
			}
			data = append(data, '\n')
			if outPath != "" {
				if err := util.WriteFileWithDirs(outPath, data, 0o644); err != nil {
					return exitError(exitFailure, "write %s: %v", outPath, err)
				}
				fmt.Fprintf(out, "%s %s\n", okStyle.Render("wrote"), outPath)
				return nil
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "Print the registry as JSON")
	cmd.Flags().String("out", "", "Write the JSON registry to a file")
	addRegistryFlags(cmd)
	return cmd
}

func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project [manifest]",
		Short: "Show the loaded project file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, manifestArg(args), coreapp.WithRegistryOptions(registryOverrides(cmd)))
			if err != nil {
				return err
			}
			defer a.Close()

			pf, reg, err := a.Load(commandContext(cmd))
			if err != nil {
				return exitError(exitFailure, "%v", err)
			}
			printProject(cmd.OutOrStdout(), pf, reg)
			return nil
		},
	}
	addRegistryFlags(cmd)
	return cmd
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [manifest]",
		Short: "Rebuild the registry whenever the manifest changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts, manifestArg(args), coreapp.WithRegistryOptions(registryOverrides(cmd)))
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			obs := a.Config.Observability
			shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
				Enabled:        obs.EnableTracing,
				Endpoint:       obs.OTLPEndpoint,
				ServiceName:    obs.ServiceName,
				ServiceVersion: version.Version,
				Insecure:       true,
			})
			if err != nil {
				return exitError(exitFailure, "init tracing: %v", err)
			}
			defer flush(shutdown)

			serve, _ := cmd.Flags().GetBool("serve")
			if serve || obs.Enabled {
				srv := observability.NewServer(obs.Address, a.Health)
				if err := srv.Start(); err != nil {
					return exitError(exitFailure, "start observability server: %v", err)
				}
				defer flush(srv.Stop)
			}

			out := cmd.OutOrStdout()
			if err := a.Watch(ctx, func(r coreapp.Reload) { printReload(out, r) }); err != nil {
				return exitError(exitFailure, "%v", err)
			}
			return nil
		},
	}
	cmd.Flags().Bool("serve", false, "Serve /metrics and /health while watching")
	addRegistryFlags(cmd)
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [manifest]",
		Short: "List recorded registry loads",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			since, _ := cmd.Flags().GetDuration("since")
			if since < 0 {
				return exitError(exitUsage, "--since must not be negative")
			}

			a, err := openApp(cmd, opts, manifestArg(args))
			if err != nil {
				return err
			}
			defer a.Close()

			var snapshots []history.Snapshot
			if since > 0 {
				snapshots, err = a.HistorySince(time.Now().Add(-since), limit)
			} else {
				snapshots, err = a.History(limit)
			}
			if err != nil {
				if pjerrors.IsCode(err, pjerrors.CodeNotFound) {
					return exitError(exitFailure, "history is disabled; set [history] enabled = true")
				}
				return exitError(exitFailure, "%v", err)
			}
			printHistory(cmd.OutOrStdout(), snapshots)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of entries")
	cmd.Flags().Duration("since", 0, "Only list loads newer than this, e.g. 24h")
	return cmd
}

func newBrowseCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [manifest]",
		Short: "Browse the registry interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			closeLogs := configureFileLogging(opts.verbose)
			defer closeLogs()

			a, err := openApp(cmd, opts, manifestArg(args), coreapp.WithRegistryOptions(registryOverrides(cmd)))
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, reg, err := a.Load(ctx)
			if err != nil {
				return exitError(exitFailure, "%v", err)
			}

			var updates chan browse.UpdateMsg
			if watch {
				updates = make(chan browse.UpdateMsg, 1)
				go func() {
					err := a.Watch(ctx, func(r coreapp.Reload) {
						select {
						case updates <- browse.UpdateMsg{Registry: r.Registry, Err: r.Err}:
						case <-ctx.Done():
						}
					})
					if err != nil {
						slog.Error("watch stopped", "error", err)
					}
				}()
			}

			if err := browse.Run(ctx, reg, updates); err != nil {
				return exitError(exitFailure, "browse: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().Bool("watch", false, "Refresh the view when the manifest changes")
	addRegistryFlags(cmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", version.Name, version.Version)
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func flush(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("shutdown", "error", err)
	}
}

func codeOrMessage(err error) string {
	if code := pjerrors.CodeOf(err); code != "" {
		return string(code)
	}
	return err.Error()
}
