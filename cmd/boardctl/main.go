package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pet-planboard/internal/adapters/eventstore"
	"pet-planboard/internal/domain/events"
	"pet-planboard/internal/planboard"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// boardctl es la vista de consola del planboard: consulta la API de eventos y
// renderiza los tres buckets sin pasar por boardd. Pensada para inspección
// rápida desde la terminal de la clínica.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardctl",
		Short: "Planboard veterinario en la terminal.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().String("api-url", "", "base URL de la API de eventos")
	cmd.PersistentFlags().String("user", "", "usuario (modo dev)")
	_ = viper.BindPFlag("ctl.api_url", cmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("ctl.user", cmd.PersistentFlags().Lookup("user"))

	cmd.AddCommand(newBoardCmd())
	cmd.AddCommand(newPatientsCmd())
	cmd.AddCommand(newTypesCmd())
	return cmd
}

func loadConfig() error {
	viper.SetConfigName(".planboard")
	viper.SetEnvPrefix("PLANBOARD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

func newClient() (*eventstore.Client, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	return eventstore.New(eventstore.Options{
		BaseURL: viper.GetString("ctl.api_url"),
		UserID:  viper.GetString("ctl.user"),
		Token:   viper.GetString("ctl.token"),
	})
}

func newBoardCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "board <petID>",
		Short: "Muestra los buckets Urgente / Planes / Historial de una mascota.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			evs, err := c.ListEvents(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			limit := planboard.DefaultHistoryLimit
			if all {
				limit = 0
			}
			b := planboard.Classify(time.Now(), evs, limit)

			printBucket("Urgente", b.Urgent, len(b.Urgent))
			printBucket("Planes", b.Plans, len(b.Plans))
			printBucket("Historial", b.History, b.HistoryTotal)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "historial completo, sin tope")
	return cmd
}

func printBucket(title string, cards []planboard.Card, total int) {
	t := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = t.Fprintf(color.Output, "\n%s", title)
	_, _ = faint.Fprintf(color.Output, "  %d de %d\n", len(cards), total)

	if len(cards) == 0 {
		_, _ = faint.Fprintln(color.Output, "  (vacío)")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, card := range cards {
		when := card.ScheduledAt.Local().Format("Mon 02 Jan 15:04")
		tbl.AddRow("  "+statusGlyph(card), when, string(card.Type), card.Title)
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
}

// statusGlyph colorea el estado: rojo = planned vencido, verde = completado,
// amarillo = perdido, neutro = planeado a futuro.
func statusGlyph(c planboard.Card) string {
	switch {
	case c.Status == events.StatusCompleted:
		return color.GreenString("✓")
	case c.Status == events.StatusMissed:
		return color.YellowString("✗")
	case c.Overdue:
		return color.RedString("!")
	default:
		return "·"
	}
}

func newPatientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "Lista las mascotas visibles para el usuario.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}

			ps, err := c.ListPatients(cmd.Context())
			if err != nil {
				return err
			}

			tbl := uitable.New()
			tbl.Separator = "  "
			bold := color.New(color.Bold).SprintFunc()
			tbl.AddRow(bold("ID"), bold("Nombre"), bold("Dueño"), bold("Especie"), bold("Sexo"))
			for _, p := range ps {
				tbl.AddRow(p.ID, p.Name, p.OwnerName, string(p.Species), string(p.Sex))
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Muestra el diccionario de tipos de evento.",
		RunE: func(_ *cobra.Command, _ []string) error {
			tbl := uitable.New()
			tbl.Separator = "  "
			for _, d := range events.Types() {
				tbl.AddRow(d.Icon, string(d.ID), d.Label)
			}
			_, _ = fmt.Fprintln(color.Output, tbl)
			return nil
		},
	}
}
