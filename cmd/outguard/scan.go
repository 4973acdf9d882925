package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/outguard/internal/config"
	"github.com/fyrsmithlabs/outguard/internal/finding"
	"github.com/fyrsmithlabs/outguard/internal/incident"
	"github.com/fyrsmithlabs/outguard/internal/scan"
)

// maxScanInput caps the text read by the scan command.
const maxScanInput = 1 << 20

type scanOptions struct {
	*rootOptions
	jsonOutput bool
	record     bool
	metadata   scan.Metadata
}

// scanResult is the --json output of the scan command.
type scanResult struct {
	Findings    []finding.Finding `json:"findings"`
	MaxSeverity string            `json:"max_severity,omitempty"`
	Suppressed  bool              `json:"suppressed"`
	Alert       string            `json:"alert,omitempty"`
	IncidentID  string            `json:"incident_id,omitempty"`
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "scan [file|-]",
		Short: "Scan text for leaked credentials",
		Long: `Scan a file, or stdin when no file or "-" is given, with the same
detectors the daemon uses. Exits 1 when the result would be reported.

The incident log is only written with --record.

Examples:
  outguard scan reply.txt
  echo "token ghp_..." | outguard scan --json
  outguard scan --record --session main --channel telegram reply.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithFile(opts.configPath)
			if err != nil {
				return err
			}
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			text, err := readScanInput(path, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runScan(cmd, cfg, opts, text)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.record, "record", false, "append reportable results to the incident log")
	cmd.Flags().StringVar(&opts.metadata.SessionID, "session", "", "session id recorded with --record")
	cmd.Flags().StringVar(&opts.metadata.Channel, "channel", "", "channel recorded with --record")
	cmd.Flags().StringVar(&opts.metadata.Target, "target", "", "target recorded with --record")
	return cmd
}

func readScanInput(path string, stdin io.Reader) (string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxScanInput+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxScanInput {
		return "", fmt.Errorf("input exceeds %d bytes", maxScanInput)
	}
	return string(data), nil
}

func runScan(cmd *cobra.Command, cfg *config.Config, opts *scanOptions, text string) error {
	ctx := cmd.Context()

	logger, err := newLogger(cfg, nil, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	findings := a.scanner.ScanContext(ctx, text)
	suppressed := scan.Suppress(findings, scan.TextLength(text))

	res := scanResult{
		Findings:   findings,
		Suppressed: suppressed,
	}
	if res.Findings == nil {
		res.Findings = []finding.Finding{}
	}
	if len(findings) > 0 {
		res.MaxSeverity = finding.MaxSeverity(findings).String()
	}
	if !suppressed {
		res.Alert, _ = incident.AlertMessage(findings)
		if opts.record {
			rec := a.reporter.Report(ctx, findings, scan.Input{Text: text, Metadata: opts.metadata}, nil)
			res.IncidentID = rec.ID
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	} else {
		renderFindings(out, findings, suppressed, res.Alert)
		if res.IncidentID != "" {
			fmt.Fprintf(out, "%s %s\n", dimStyle.Render("recorded incident"), res.IncidentID)
		}
	}

	if !suppressed {
		return errIncident
	}
	return nil
}
