package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalambet/priotrack/internal/config"
	"github.com/kalambet/priotrack/internal/record"
)

// snapToStep rounds a duration to the nearest multiple of the configured
// input step, the same granularity the original input widget enforced.
// A zero or negative step disables snapping.
func snapToStep(d, step float64) float64 {
	if step <= 0 {
		return d
	}
	return math.Round(d/step) * step
}

// --- log ---

var logCmd = &cobra.Command{
	Use:   "log <description>",
	Short: "Log a completed activity",
	Long: `Log a completed activity against one of your priorities.

Examples:
  priotrack log "morning run" --priority Fitness --duration 0.75
  priotrack log "band rehearsal" --priority Music --duration 2 --remarks "new setlist"
  priotrack log "deep work" --priority Career --from-timer`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, _ := cmd.Flags().GetString("priority")
		duration, _ := cmd.Flags().GetFloat64("duration")
		remarks, _ := cmd.Flags().GetString("remarks")
		at, _ := cmd.Flags().GetString("at")
		fromTimer, _ := cmd.Flags().GetBool("from-timer")

		if !record.ValidPriority(priority) {
			return fmt.Errorf("--priority must be one of: %s", strings.Join(record.Priorities, ", "))
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		duration = snapToStep(duration, cfg.Input.DurationStep)

		req := map[string]any{
			"priority":       priority,
			"description":    strings.Join(args, " "),
			"duration_hours": duration,
			"remarks":        remarks,
			"from_timer":     fromTimer,
		}
		if at != "" {
			req["timestamp"] = at
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/activities", req)
		if err != nil {
			return err
		}

		var result struct {
			Activity struct {
				Timestamp     string  `json:"timestamp"`
				DurationHours float64 `json:"duration_hours"`
			} `json:"activity"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Logged %.2fh of %s at %s", result.Activity.DurationHours, priority, result.Activity.Timestamp)
		return nil
	},
}

func init() {
	logCmd.Flags().String("priority", "", "priority category (required)")
	logCmd.Flags().Float64("duration", 0, "duration in hours (snapped to input.duration_step)")
	logCmd.Flags().String("remarks", "", "optional remarks")
	logCmd.Flags().String("at", "", "timestamp (default: now)")
	logCmd.Flags().Bool("from-timer", false, "take the duration from the session timer and reset it")
	logCmd.MarkFlagRequired("priority")
}

// --- schedule ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Plan activities on the calendar",
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add <activity>",
	Short: "Add a planned activity",
	Long: `Add a planned activity to the schedule.

Examples:
  priotrack schedule add "gym session" --priority Fitness --duration 1 --date 2026-09-01
  priotrack schedule add "practice scales" --priority Music --duration 0.5 --recurrence Daily
  priotrack schedule add "long run" --priority Fitness --duration 2 \
      --recurrence Weekly --weekday Sunday --start 2026-09-01 --end 2026-09-30`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, _ := cmd.Flags().GetString("priority")
		duration, _ := cmd.Flags().GetFloat64("duration")
		recurrence, _ := cmd.Flags().GetString("recurrence")
		date, _ := cmd.Flags().GetString("date")
		timeOfDay, _ := cmd.Flags().GetString("time")
		weekday, _ := cmd.Flags().GetString("weekday")
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		if !record.ValidPriority(priority) {
			return fmt.Errorf("--priority must be one of: %s", strings.Join(record.Priorities, ", "))
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		duration = snapToStep(duration, cfg.Input.DurationStep)

		req := map[string]any{
			"priority":               priority,
			"planned_activity":       strings.Join(args, " "),
			"planned_duration_hours": duration,
			"recurrence":             recurrence,
			"date":                   date,
			"time":                   timeOfDay,
			"weekday":                weekday,
			"start_date":             start,
			"end_date":               end,
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/schedule", req)
		if err != nil {
			return err
		}

		var result struct {
			BatchID string `json:"batch_id"`
			Entries []struct {
				Date string `json:"date"`
			} `json:"entries"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Scheduled %d entries (batch %s)", len(result.Entries), result.BatchID)
		return nil
	},
}

var scheduleTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's planned activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/schedule?date=today")
		if err != nil {
			return err
		}

		var result struct {
			Entries  []scheduleRow `json:"entries"`
			Warnings []string      `json:"warnings"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if len(result.Entries) == 0 {
			fmt.Println("Nothing planned for today.")
		}
		for _, e := range result.Entries {
			printScheduleRow(e)
		}
		printRowWarnings(result.Warnings)
		return nil
	},
}

type scheduleRow struct {
	Date                 string  `json:"date"`
	Time                 string  `json:"time"`
	Priority             string  `json:"priority"`
	PlannedActivity      string  `json:"planned_activity"`
	PlannedDurationHours float64 `json:"planned_duration_hours"`
	Recurrence           string  `json:"recurrence"`
	Status               string  `json:"status"`
}

func printScheduleRow(e scheduleRow) {
	when := e.Date
	if e.Time != "" {
		when += " " + e.Time
	}
	fmt.Printf("%s  %-12s %-6.2fh  %s [%s]\n",
		colorize(colorCyan, when), e.Priority, e.PlannedDurationHours, e.PlannedActivity, e.Status)
}

func printRowWarnings(warnings []string) {
	for _, w := range warnings {
		printWarning("%s", w)
	}
}

func init() {
	scheduleAddCmd.Flags().String("priority", "", "priority category (required)")
	scheduleAddCmd.Flags().Float64("duration", 0, "planned duration in hours (snapped to input.duration_step)")
	scheduleAddCmd.Flags().String("recurrence", record.RecurrenceOneTime, "One-time, Daily, or Weekly")
	scheduleAddCmd.Flags().String("date", "", "target date for One-time (YYYY-MM-DD)")
	scheduleAddCmd.Flags().String("time", "", "optional time of day (HH:MM)")
	scheduleAddCmd.Flags().String("weekday", "", "weekday name for Weekly")
	scheduleAddCmd.Flags().String("start", "", "range start for Weekly (YYYY-MM-DD)")
	scheduleAddCmd.Flags().String("end", "", "range end for Weekly (YYYY-MM-DD)")
	scheduleAddCmd.MarkFlagRequired("priority")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleTodayCmd)
}

// --- analytics ---

func windowQuery(cmd *cobra.Command) string {
	window, _ := cmd.Flags().GetString("window")
	if window == "" {
		return ""
	}
	return "?window=" + url.QueryEscape(window)
}

var kpisCmd = &cobra.Command{
	Use:   "kpis",
	Short: "Show headline numbers for a time window",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/kpis"+windowQuery(cmd))
		if err != nil {
			return err
		}

		var kpis kpiView
		if err := decodeJSON(resp, &kpis); err != nil {
			return err
		}
		printKPIs(kpis)
		return nil
	},
}

type kpiView struct {
	TotalHours         float64            `json:"total_hours"`
	AvgHoursPerDay     float64            `json:"avg_hours_per_day"`
	PriorityAverages   map[string]float64 `json:"priority_averages"`
	MostActivePriority string             `json:"most_active_priority"`
}

func printKPIs(kpis kpiView) {
	printStatus("Total hours", "%.2f", kpis.TotalHours)
	printStatus("Avg hours/day", "%.2f", kpis.AvgHoursPerDay)
	printStatus("Most active", "%s", kpis.MostActivePriority)

	names := make([]string, 0, len(kpis.PriorityAverages))
	for name := range kpis.PriorityAverages {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		printStatus(name, "%.2f h/day", kpis.PriorityAverages[name])
	}
}

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Show per-priority consistency streaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/streaks"+windowQuery(cmd))
		if err != nil {
			return err
		}

		var streaks map[string]streakView
		if err := decodeJSON(resp, &streaks); err != nil {
			return err
		}
		printStreaks(streaks)
		return nil
	},
}

type streakView struct {
	Current      int    `json:"current_streak_days"`
	Max          int    `json:"max_streak_days"`
	LastActivity string `json:"last_activity_date"`
}

// dateOnly reduces a server timestamp to its calendar date, passing
// through anything it cannot parse rather than assuming a length.
func dateOnly(s string) string {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	return s
}

func printStreaks(streaks map[string]streakView) {
	if len(streaks) == 0 {
		fmt.Println("No activity yet.")
		return
	}
	names := make([]string, 0, len(streaks))
	for name := range streaks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := streaks[name]
		printStatus(name, "current %dd, best %dd, last %s", s.Current, s.Max, dateOnly(s.LastActivity))
	}
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compare planned hours against actual hours",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/plan-vs-actual"+windowQuery(cmd))
		if err != nil {
			return err
		}

		var rec reconciliationView
		if err := decodeJSON(resp, &rec); err != nil {
			return err
		}
		printReconciliation(rec)
		return nil
	},
}

type reconciliationView struct {
	Rows []struct {
		Date           string  `json:"date"`
		Priority       string  `json:"priority"`
		PlannedHours   float64 `json:"planned_hours"`
		ActualHours    float64 `json:"actual_hours"`
		Difference     float64 `json:"difference"`
		CompletionRate float64 `json:"completion_rate"`
	} `json:"rows"`
	ByPriority []struct {
		Priority            string  `json:"priority"`
		TotalPlannedHours   float64 `json:"total_planned_hours"`
		TotalActualHours    float64 `json:"total_actual_hours"`
		PercentageDeviation float64 `json:"percentage_deviation"`
	} `json:"by_priority"`
	TotalPlannedHours     float64 `json:"total_planned_hours"`
	TotalActualHours      float64 `json:"total_actual_hours"`
	OverallCompletionRate float64 `json:"overall_completion_rate"`
}

func printReconciliation(rec reconciliationView) {
	if len(rec.Rows) == 0 {
		fmt.Println("Nothing to compare yet.")
		return
	}
	for _, r := range rec.Rows {
		fmt.Printf("%s  %-12s planned %5.2fh  actual %5.2fh  diff %+5.2fh  %6.2f%%\n",
			colorize(colorCyan, r.Date), r.Priority, r.PlannedHours, r.ActualHours, r.Difference, r.CompletionRate)
	}
	fmt.Println()
	for _, p := range rec.ByPriority {
		printStatus(p.Priority, "planned %.2fh, actual %.2fh, deviation %+.2f%%",
			p.TotalPlannedHours, p.TotalActualHours, p.PercentageDeviation)
	}
	printStatus("Overall", "planned %.2fh, actual %.2fh, completion %.2f%%",
		rec.TotalPlannedHours, rec.TotalActualHours, rec.OverallCompletionRate)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the full dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/report"+windowQuery(cmd))
		if err != nil {
			return err
		}

		var rep struct {
			Window          string                `json:"window"`
			KPIs            *kpiView              `json:"kpis"`
			KPIsError       string                `json:"kpis_error"`
			Streaks         map[string]streakView `json:"streaks"`
			StreaksError    string                `json:"streaks_error"`
			PlanVsActual    *reconciliationView   `json:"plan_vs_actual"`
			PlanVsActualErr string                `json:"plan_vs_actual_error"`
			DailyTotals     []struct {
				Date  string  `json:"date"`
				Hours float64 `json:"hours"`
			} `json:"daily_totals"`
			RecentActivities []struct {
				Timestamp   string  `json:"timestamp"`
				Priority    string  `json:"priority"`
				Description string  `json:"description"`
				Duration    float64 `json:"duration_hours"`
			} `json:"recent_activities"`
			Warnings []string `json:"warnings"`
		}
		if err := decodeJSON(resp, &rep); err != nil {
			return err
		}

		printHeading("KPIs (" + rep.Window + ")")
		if rep.KPIsError != "" {
			printError("%s", rep.KPIsError)
		} else if rep.KPIs != nil {
			printKPIs(*rep.KPIs)
		}

		printHeading("\nStreaks")
		if rep.StreaksError != "" {
			printError("%s", rep.StreaksError)
		} else {
			printStreaks(rep.Streaks)
		}

		printHeading("\nPlan vs actual")
		if rep.PlanVsActualErr != "" {
			printError("%s", rep.PlanVsActualErr)
		} else if rep.PlanVsActual != nil {
			printReconciliation(*rep.PlanVsActual)
		}

		if len(rep.DailyTotals) > 0 {
			printHeading("\nDaily totals")
			for _, d := range rep.DailyTotals {
				printStatus(d.Date, "%.2fh", d.Hours)
			}
		}

		if len(rep.RecentActivities) > 0 {
			printHeading("\nRecent activities")
			for _, a := range rep.RecentActivities {
				fmt.Printf("%s  %-12s %-6.2fh  %s\n",
					colorize(colorCyan, a.Timestamp), a.Priority, a.Duration, a.Description)
			}
		}

		printRowWarnings(rep.Warnings)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{kpisCmd, streaksCmd, planCmd, reportCmd} {
		c.Flags().String("window", "", "time window: 7d, 30d, 90d, or all (default all)")
	}
}

// --- timer ---

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Drive the session timer",
}

func timerAction(path string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var resp *http.Response
		if path == "/timer" {
			resp, err = client.get(cmd.Context(), path)
		} else {
			resp, err = client.post(cmd.Context(), path, nil)
		}
		if err != nil {
			return err
		}

		var state struct {
			Running bool   `json:"running"`
			Display string `json:"display"`
		}
		if err := decodeJSON(resp, &state); err != nil {
			return err
		}

		label := "stopped"
		if state.Running {
			label = "running"
		}
		printStatus("Timer", "%s (%s)", label, state.Display)
		return nil
	}
}

func init() {
	timerCmd.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start or resume the session timer",
		RunE:  timerAction("/timer/start"),
	})
	timerCmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Pause the session timer",
		RunE:  timerAction("/timer/stop"),
	})
	timerCmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset the session timer to zero",
		RunE:  timerAction("/timer/reset"),
	})
	timerCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current timer state",
		RunE:  timerAction("/timer"),
	})
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.ValidKeys(), ", "))
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored data as JSONL",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		var writer *os.File
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			writer = f
		} else {
			writer = os.Stdout
		}

		if err := exportTables(cmd.Context(), client, writer); err != nil {
			return err
		}

		if output != "" {
			printSuccess("Data exported to %s", output)
		}
		return nil
	},
}

// exportTables streams both tables as JSONL. Write failures (full disk,
// closed pipe) abort the export instead of truncating it silently.
func exportTables(ctx context.Context, client *apiClient, w io.Writer) error {
	enc := json.NewEncoder(w)

	resp, err := client.get(ctx, "/activities")
	if err != nil {
		return err
	}
	var acts struct {
		Activities []any `json:"activities"`
	}
	if err := decodeJSON(resp, &acts); err != nil {
		return err
	}
	for _, a := range acts.Activities {
		if err := enc.Encode(map[string]any{"type": "activity", "data": a}); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
	}

	resp, err = client.get(ctx, "/schedule")
	if err != nil {
		return err
	}
	var sched struct {
		Entries []any `json:"entries"`
	}
	if err := decodeJSON(resp, &sched); err != nil {
		return err
	}
	for _, e := range sched.Entries {
		if err := enc.Encode(map[string]any{"type": "schedule_entry", "data": e}); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
	}
	return nil
}

func init() {
	exportCmd.Flags().String("output", "", "output file path (default: stdout)")
}
