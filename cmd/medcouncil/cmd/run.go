package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"medcouncil/internal/council"
	"medcouncil/internal/core"
	"medcouncil/internal/dataset"
	"medcouncil/internal/report"
	"medcouncil/internal/runlog"
	"medcouncil/internal/stats"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the question dataset through the advisor council",
	Long: `Load the configured dataset and process every question: each one is sent
to all advisors in parallel, then the decision model arbitrates the final
answer. Results stream into a fresh run directory as they complete.

--resume accepts either a question ID (processing restarts at that ID) or a
previous run directory (processing restarts after its last committed
question).`,
	RunE: runCouncil,
}

var (
	runTest          bool
	runSample        int
	runResume        string
	runAdvisors      []string
	runDecisionModel string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runTest, "test", false, "print each result as it completes and the summary at the end")
	runCmd.Flags().IntVar(&runSample, "sample", 0, "process only the first N questions")
	runCmd.Flags().StringVar(&runResume, "resume", "", "question ID or previous run directory to resume from")
	runCmd.Flags().StringSliceVar(&runAdvisors, "advisors", nil, "restrict the council to these configured advisors")
	runCmd.Flags().StringVar(&runDecisionModel, "decision-model", "", "override the decision model id")
}

var (
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	plainStyle   = lipgloss.NewStyle()
)

func runCouncil(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runDecisionModel != "" {
		cfg.Models.Decision.Model = runDecisionModel
	}
	if noColor {
		correctStyle, wrongStyle, faintStyle = plainStyle, plainStyle, plainStyle
	}

	logger := newLogger(cfg)
	deps, err := buildCouncil(cfg, runAdvisors, logger)
	if err != nil {
		return err
	}

	questions, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset.ImageBaseDir)
	if err != nil {
		return err
	}

	resumeFrom, err := resolveResume(runResume)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nReceived interrupt, finishing current question...")
		cancel()
	}()

	rl, err := runlog.Open(cfg.Run.LogDir, cfg.Run.SaveRaw)
	if err != nil {
		return err
	}
	defer rl.Close()

	agg := stats.New(deps.prompts.AdvisorNames())
	runner := council.NewRunner(deps.processor, agg, rl, report.NewWriter(), logger.WithRun(rl.Dir()))

	opts := council.Options{
		TestMode:   runTest,
		SampleSize: runSample,
		ResumeFrom: resumeFrom,
	}
	if runTest {
		opts.OnResult = printResult
	}

	dir, runErr := runner.Run(ctx, questions, opts)
	if runErr != nil {
		fmt.Printf("Run aborted; resume with: medcouncil run --resume %s\n", dir)
		return runErr
	}

	if runTest {
		if err := printSummary(dir); err != nil {
			logger.Warn("rendering summary", "error", err)
		}
	}
	fmt.Printf("Run complete: %s\n", dir)
	return nil
}

// resolveResume interprets the --resume value: a bare integer is a question
// ID, anything else is a previous run directory whose last committed question
// determines the restart point. Empty disables resume.
func resolveResume(value string) (int, error) {
	if value == "" {
		return -1, nil
	}
	if id, err := strconv.Atoi(value); err == nil {
		if id < 0 {
			return 0, fmt.Errorf("resume ID must be >= 0, got %d", id)
		}
		return id, nil
	}
	last, err := runlog.LastCompletedID(value)
	if err != nil {
		return 0, fmt.Errorf("resolving resume directory %s: %w", value, err)
	}
	return last + 1, nil
}

func printResult(res core.Result) {
	verdict := wrongStyle.Render("✗")
	if res.Decision.IsCorrect {
		verdict = correctStyle.Render("✓")
	}
	names := make([]string, 0, len(res.Advisors))
	for name := range res.Advisors {
		names = append(names, name)
	}
	sort.Strings(names)
	answers := ""
	for _, name := range names {
		a := res.Advisors[name].ParsedAnswer
		if a == "" {
			a = "-"
		}
		answers += fmt.Sprintf(" %s=%s", name, a)
	}
	fmt.Printf("%s pregunta %d: decision=%s esperada=%s%s %s\n",
		verdict,
		res.Question.ID,
		res.Decision.ParsedAnswer,
		res.Question.CorrectAnswer,
		answers,
		faintStyle.Render(res.Elapsed.Round(100*time.Millisecond).String()),
	)
}

func printSummary(dir string) error {
	data, err := os.ReadFile(report.SummaryPath(dir))
	if err != nil {
		return err
	}
	out, err := glamour.Render(string(data), "auto")
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
