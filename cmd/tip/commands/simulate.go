package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/tip/am"
	"github.com/teranos/tip/display"
	"github.com/teranos/tip/errors"
	"github.com/teranos/tip/logger"
	"github.com/teranos/tip/scenario"
	"github.com/teranos/tip/sym"
)

// SimulateCmd replays a scenario file against the engine
var SimulateCmd = &cobra.Command{
	Use:   "simulate <scenario.toml>",
	Short: sym.Engine + " Replay a tooltip scenario",
	Long: sym.Engine + ` simulate — Replay a tooltip scenario

Loads a scenario (page markup, tooltips and input steps), replays it against
the engine and prints every phase change. Replays run in virtual time unless
--realtime is given.

Steps: ` + strings.Join(scenario.Ops(), ", ") + `

Examples:
  tip simulate hover.toml
  tip simulate hover.toml --realtime
  tip simulate hover.toml --watch
  tip simulate hover.toml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	SimulateCmd.Flags().Bool("realtime", false, "Run the event loop against the wall clock")
	SimulateCmd.Flags().Bool("watch", false, "Replay again whenever the scenario file changes")
	SimulateCmd.Flags().Bool("json", false, "Output the result as JSON")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	path := args[0]
	realtime, _ := cmd.Flags().GetBool("realtime")
	watch, _ := cmd.Flags().GetBool("watch")
	asJSON := display.ShouldOutputJSON(cmd)

	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	opts := scenario.Options{Config: cfg, Realtime: realtime, Logger: logger.Logger}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	if err := simulateOnce(ctx, out, path, opts, asJSON); err != nil {
		if !watch {
			return err
		}
		// keep watching so the next save can fix it
		logger.Warnw("Scenario failed", logger.FieldFile, path, logger.FieldError, err)
	}
	if !watch {
		return nil
	}

	fw, err := am.NewFileWatcher(path)
	if err != nil {
		return err
	}
	fw.OnReload(func(changed string) error {
		logger.Infow("Scenario changed, replaying", logger.FieldFile, changed)
		return simulateOnce(ctx, out, path, opts, asJSON)
	})
	fw.Start()
	logger.Infow("Watching scenario", logger.FieldFile, path)

	<-ctx.Done()
	return fw.Stop()
}

// simulateOnce loads, replays and prints one scenario
func simulateOnce(ctx context.Context, w io.Writer, path string, opts scenario.Options, asJSON bool) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}
	res, err := scenario.Play(ctx, s, opts)
	if err != nil {
		return errors.Wrapf(err, "replay %s", s.Title())
	}
	if asJSON {
		return display.WriteJSON(w, res)
	}
	return renderResult(w, res)
}

// renderResult prints the transition table and any state snapshots
func renderResult(w io.Writer, res *scenario.Result) error {
	fmt.Fprintf(w, "%s %s: %d tooltip(s), %d step(s), %dms\n",
		sym.Engine, res.Name, res.Instances, res.Steps, res.ElapsedMS)

	if len(res.Transitions) == 0 {
		fmt.Fprintln(w, "no phase changes")
	} else {
		data := pterm.TableData{{"t (ms)", "step", "id", "reference", "from", "to"}}
		for _, r := range res.Transitions {
			data = append(data, []string{
				strconv.FormatInt(r.AtMS, 10),
				strconv.Itoa(r.Step),
				strconv.FormatUint(r.Instance, 10),
				r.Reference,
				r.From.Glyph() + " " + r.From.String(),
				r.To.Glyph() + " " + r.To.String(),
			})
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, "failed to render transitions")
		}
		fmt.Fprintln(w, table)
	}

	if len(res.States) == 0 {
		return nil
	}
	data := pterm.TableData{{"step", "id", "reference", "phase", "mounted", "placement", "content"}}
	for _, s := range res.States {
		data = append(data, []string{
			strconv.Itoa(s.Step),
			strconv.FormatUint(s.Instance, 10),
			s.Reference,
			s.Phase.Glyph() + " " + s.Phase.String(),
			strconv.FormatBool(s.Mounted),
			s.Placement,
			s.Content,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render states")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, table)
	return nil
}
