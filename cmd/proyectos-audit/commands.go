package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/Proyectos-api/internal/application/consistency"
	"github.com/jhoicas/Proyectos-api/internal/application/membership"
	"github.com/jhoicas/Proyectos-api/internal/application/ports"
)

// errFindings el chequeo terminó bien pero encontró inconsistencias (exit 1).
var errFindings = errors.New("se encontraron inconsistencias")

type openStoreFunc func(ctx context.Context) (ports.Store, func(), error)

func newRootCmd(open openStoreFunc, migrate func(context.Context) error, log zerolog.Logger, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "proyectos-audit",
		Short:         "Coherencia entre proyecto_usuarios y las columnas legacy de proyectos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(
		newCheckCmd(open, log),
		newSyncCmd("sync-legacy", "Recalcula estudiante_id/director_id/evaluador_id desde las membresías", open, log,
			func(a *membership.LegacyAdapter) syncFunc { return a.SyncLegacyFromMembership }),
		newSyncCmd("backfill", "Crea membresías faltantes a partir de las columnas legacy", open, log,
			func(a *membership.LegacyAdapter) syncFunc { return a.SyncMembershipFromLegacy }),
		&cobra.Command{
			Use:   "migrate",
			Short: "Aplica las migraciones SQL embebidas",
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migraciones aplicadas")
				return nil
			},
		},
	)
	return root
}

func newCheckCmd(open openStoreFunc, log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Reporta inconsistencias sin corregirlas (exit 1 si hay hallazgos)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			rep, err := consistency.NewChecker(store, log).Check(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "proyectos: %d  invitaciones: %d  hallazgos: %d\n",
				rep.ProjectsScanned, rep.InvitationsScanned, len(rep.Findings))
			for _, f := range rep.Findings {
				fmt.Fprintf(w, "%-26s proyecto=%s rol=%s usuarios=%s %s\n",
					f.Kind, f.ProjectID, f.Role, strings.Join(f.UserIDs, ","), f.Detail)
			}
			if !rep.OK() {
				return errFindings
			}
			return nil
		},
	}
}

type syncFunc func(ctx context.Context, projectID string) (*membership.SyncResult, error)

func newSyncCmd(use, short string, open openStoreFunc, log zerolog.Logger, pick func(*membership.LegacyAdapter) syncFunc) *cobra.Command {
	var projectID string
	var all bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (projectID == "") == !all {
				return errors.New("indique --project <id> o --all")
			}
			store, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ids := []string{projectID}
			if all {
				if ids, err = store.Repos().Projects.ListIDs(cmd.Context()); err != nil {
					return err
				}
			}
			run := pick(membership.NewLegacyAdapter(store, log))
			w := cmd.OutOrStdout()
			changed := 0
			for _, id := range ids {
				res, err := run(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("proyecto %s: %w", id, err)
				}
				if res.Changed {
					changed++
				}
				for _, warn := range res.Warnings {
					fmt.Fprintln(w, "aviso:", warn.String())
				}
			}
			fmt.Fprintf(w, "%s: %d proyectos revisados, %d modificados\n", use, len(ids), changed)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "ID del proyecto")
	cmd.Flags().BoolVar(&all, "all", false, "todos los proyectos")
	return cmd
}
