package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/internal/doctor"
	"github.com/thoreinstein/mcpm/internal/errors"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"repair what can be repaired (file permissions), then re-run the checks")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose client config files and server entries",
	Long: `Run diagnostic checks on every client config file and on mcpm's own
configuration.

Checks:
  client-files      which client config files exist
  config-syntax     files parse as JSON and their server maps are objects
  file-permissions  files are not group- or world-writable, nor executable
  server-entries    stdio commands are on PATH, remote URLs are well formed

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  mcpm doctor
  mcpm doctor --verbose
  mcpm doctor --fix`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.NewUserError(nil, "flags --json, --quiet, and --verbose are mutually exclusive")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cwd, err := workingDir()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	runner := doctor.Default(cwd)
	report := runner.Run()

	if doctorFix {
		if applyFixes(w, runner) {
			report = runner.Run()
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	return doctorExit(report)
}

// doctorExit maps a report to the documented exit codes. The returned
// errors carry no message; the report already said everything.
func doctorExit(report *doctor.Report) error {
	if report.HasErrors() {
		return errors.NewExitError(nil, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

// applyFixes runs every fixer with something to fix and reports whether
// any fix was attempted.
func applyFixes(w io.Writer, runner *doctor.Runner) bool {
	attempted := false
	for _, check := range runner.Checks() {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		attempted = true
		for _, r := range fixer.Fix() {
			if doctorQuiet || doctorJSON {
				continue
			}
			icon := green("✓")
			if !r.Fixed {
				icon = red("✗")
			}
			fmt.Fprintf(w, "%s fixed %s: %s\n", icon, r.Path, r.Description)
		}
	}
	if attempted && !doctorQuiet && !doctorJSON {
		fmt.Fprintln(w)
	}
	return attempted
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return writeStructured(w, formatJSON, report)
	}

	outputDoctorText(w, report, doctorVerbose)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report, showAll bool) {
	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		for _, issue := range result.Issues {
			if !showAll && issue.Severity < doctor.SeverityWarning {
				continue
			}
			fmt.Fprintf(w, "    %s %s\n", statusIcon(issue.Severity), issueText(issue))
		}

		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func issueText(i doctor.Issue) string {
	subject := i.Path
	if i.Server != "" {
		subject = i.Server
	}
	if i.Client != "" {
		subject = i.Client + " " + subject
	}
	if subject == "" {
		return i.Problem
	}
	return subject + ": " + i.Problem
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return green("✓")
	case doctor.SeverityInfo:
		return cyan("ℹ")
	case doctor.SeverityWarning:
		return yellow("⚠")
	case doctor.SeverityError:
		return red("✗")
	default:
		return "?"
	}
}
