package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dsaboost/internal/bootstrap"
	identitydto "dsaboost/internal/modules/identity/dto"
	timerdto "dsaboost/internal/modules/timer/dto"
	"dsaboost/internal/platform/config"
	apperrors "dsaboost/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var vaultPath string

	root := &cobra.Command{
		Use:           "dsaboost",
		Short:         "DSA Daily Boost study timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&vaultPath, "vault", ".", "Obsidian vault path")

	root.AddCommand(newTUICmd(&vaultPath))
	root.AddCommand(newTimerCmd(&vaultPath))
	root.AddCommand(newTopicsCmd(&vaultPath))
	root.AddCommand(newProgressCmd(&vaultPath))
	root.AddCommand(newHistoryCmd(&vaultPath))
	root.AddCommand(newActivityCmd(&vaultPath))
	root.AddCommand(newSessionCmd(&vaultPath))
	root.AddCommand(newAuthCmd(&vaultPath))
	root.AddCommand(newChatCmd(&vaultPath))
	root.AddCommand(newFunctionsCmd(&vaultPath))
	return root
}

func loadApp(ctx context.Context, vaultPath string, logWriter io.Writer) (*bootstrap.App, error) {
	cfg, err := config.New(vaultPath)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(ctx, cfg, bootstrap.Options{LogWriter: logWriter})
}

// withApp runs fn with a wired app and a context cancelled on SIGINT/SIGTERM.
func withApp(vaultPath string, fn func(ctx context.Context, app *bootstrap.App) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app, err := loadApp(ctx, vaultPath, nil)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}

func newTUICmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.New(*vaultPath)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.LocalDir, 0o755); err != nil {
				return err
			}
			logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			defer func() { _ = logFile.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			app, err := bootstrap.New(ctx, cfg, bootstrap.Options{LogWriter: logFile})
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(ctx, app)
		},
	}
}

func newTimerCmd(vaultPath *string) *cobra.Command {
	timer := &cobra.Command{Use: "timer", Short: "Study timer lifecycle"}

	var topicID, title string
	var minutes int
	start := &cobra.Command{
		Use:   "start --topic <id>",
		Short: "Start or resume a timed session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(topicID) == "" {
				return fmt.Errorf("--topic is required")
			}
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.TimerCLI.Start(ctx, topicID, topicTitle(title, topicID), durationFor(ctx, app, minutes))
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	}
	start.Flags().StringVar(&topicID, "topic", "", "topic id")
	start.Flags().StringVar(&title, "title", "", "topic title (defaults to the id)")
	start.Flags().IntVar(&minutes, "minutes", 0, "session length in minutes (defaults to the preference)")

	var runTopic, runTitle string
	var runMinutes int
	run := &cobra.Command{
		Use:   "run --topic <id>",
		Short: "Start a session and count down in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(runTopic) == "" {
				return fmt.Errorf("--topic is required")
			}
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				return runForeground(ctx, cmd.OutOrStdout(), app, runTopic, topicTitle(runTitle, runTopic), durationFor(ctx, app, runMinutes))
			})
		},
	}
	run.Flags().StringVar(&runTopic, "topic", "", "topic id")
	run.Flags().StringVar(&runTitle, "title", "", "topic title (defaults to the id)")
	run.Flags().IntVar(&runMinutes, "minutes", 0, "session length in minutes (defaults to the preference)")

	timer.AddCommand(start, run)

	timer.AddCommand(&cobra.Command{
		Use:   "pause",
		Short: "Pause the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.TimerCLI.Pause(ctx)
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	})

	timer.AddCommand(&cobra.Command{
		Use:   "resume",
		Short: "Resume a paused session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.TimerCLI.Resume(ctx)
				if err != nil {
					return err
				}
				printSnapshot(cmd.OutOrStdout(), snap)
				return nil
			})
		},
	})

	timer.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the session and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				result, err := app.TimerCLI.Stop(ctx)
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), result)
				return nil
			})
		},
	})

	timer.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard the session without recording it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				if _, err := app.TimerCLI.Reset(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "timer reset")
				return nil
			})
		},
	})

	timer.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TimerCLI.Status(ctx)
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				if err != nil {
					return err
				}
				if !out.Visible {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session for %s running elsewhere (source=%s)\n", out.Snapshot.TopicTitle, out.Source)
					return nil
				}
				printSnapshot(cmd.OutOrStdout(), out.Snapshot)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "source: %s\n", out.Source)
				return nil
			})
		},
	})

	var delta int
	problems := &cobra.Command{
		Use:   "problems",
		Short: "Adjust the solved-problem counter of the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				snap, err := app.TimerCLI.Problems(ctx, delta)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "problems solved: %d\n", snap.ProblemsSolved)
				return nil
			})
		},
	}
	problems.Flags().IntVar(&delta, "delta", 1, "amount to add (negative to subtract)")
	timer.AddCommand(problems)

	return timer
}

// runForeground blocks until the session completes or ctx is cancelled, in
// which case the session is paused so it can be resumed later.
func runForeground(ctx context.Context, out io.Writer, app *bootstrap.App, topicID, title string, duration int) error {
	done := make(chan struct{})
	var once sync.Once
	stopSub := app.TimerCLI.Subscribe(func(snap timerdto.Snapshot) {
		if snap.StartTime == nil {
			once.Do(func() { close(done) })
			return
		}
		_, _ = fmt.Fprintf(out, "\r%s  %s  problems %d   ", title, clock(snap.TimeLeft), snap.ProblemsSolved)
	})
	defer stopSub()

	if _, err := app.TimerCLI.Start(ctx, topicID, title, duration); err != nil {
		return err
	}
	if err := app.TimerCLI.Watch(ctx); err != nil && !errors.Is(err, apperrors.ErrNotConfigured) {
		app.Logger.Warn("watch unavailable", "op", "timer.run", "error", err)
	}

	select {
	case <-done:
		_, _ = fmt.Fprintln(out, "\nsession complete")
		return nil
	case <-ctx.Done():
		pauseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := app.TimerCLI.Pause(pauseCtx); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			return err
		}
		_, _ = fmt.Fprintln(out, "\npaused")
		return nil
	}
}

func newTopicsCmd(vaultPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List catalog topics with progress",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				return printTopics(ctx, cmd.OutOrStdout(), app)
			})
		},
	}
}

func printTopics(ctx context.Context, out io.Writer, app *bootstrap.App) error {
	topics, err := app.ProgressCLI.Topics(ctx, app.UserID(ctx))
	if err != nil {
		return err
	}
	for _, t := range topics {
		_, _ = fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%d/%d\t%d%%\n",
			t.ID, t.Title, t.Category, t.Difficulty, t.Progress.ProblemsSolved, t.ProblemsCount, t.Progress.MasteryLevel)
	}
	return nil
}

func newProgressCmd(vaultPath *string) *cobra.Command {
	progress := &cobra.Command{Use: "progress", Short: "Topic progress"}

	progress.AddCommand(&cobra.Command{
		Use:   "mark <topic-id>",
		Short: "Record one solved problem for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ProgressCLI.Mark(ctx, app.UserID(ctx), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d solved, mastery %d%%, completed=%t\n",
					out.TopicID, out.ProblemsSolved, out.MasteryLevel, out.Completed)
				return nil
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List topics with mastery",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				return printTopics(ctx, cmd.OutOrStdout(), app)
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show overall and weekly totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.ProgressCLI.Stats(ctx, app.UserID(ctx))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "problems: %d\nmastered: %d\nstudy: %d min\nweek: %d problems, %d min, %d topics\n",
					s.TotalProblems, s.TopicsMastered, s.TotalStudyTime,
					s.Weekly.ProblemsCompleted, s.Weekly.StudyTimeCompleted, s.Weekly.TopicsCompleted)
				return nil
			})
		},
	})

	progress.AddCommand(&cobra.Command{
		Use:   "reset <topic-id>",
		Short: "Clear progress for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.ProgressCLI.Reset(ctx, app.UserID(ctx), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "progress reset: %s\n", args[0])
				return nil
			})
		},
	})

	return progress
}

func newHistoryCmd(vaultPath *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Recorded study sessions"}

	var limit int
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				entries, err := app.HistoryCLI.List(ctx, app.UserID(ctx), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				if len(entries) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, e := range entries {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d min\tovertime=%d\tproblems=%d\tcompleted=%t\n",
						e.StartTime.Local().Format("2006-01-02 15:04"), e.TopicTitle, e.ActualMinutes, e.OvertimeMinutes, e.ProblemsSolved, e.CompletedNormally)
				}
				return nil
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	var days int
	daily := &cobra.Command{
		Use:   "daily",
		Short: "Per-day totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				logs, err := app.HistoryCLI.Daily(ctx, app.UserID(ctx), days)
				if err != nil {
					return err
				}
				for _, d := range logs {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tsessions=%d\tstudy=%d min\ttimer=%d min\tovertime=%d\tproblems=%d\n",
						d.Date, d.Sessions, d.StudyMinutes, d.TimerMinutes, d.OvertimeMinutes, d.ProblemsSolved)
				}
				return nil
			})
		},
	}
	daily.Flags().IntVar(&days, "days", 7, "number of days")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Totals across all sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				s, err := app.HistoryCLI.Summary(ctx, app.UserID(ctx))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), s)
			})
		},
	}

	var dateFlag string
	emailSummary := &cobra.Command{
		Use:   "email-summary",
		Short: "Email the signed-in user a summary of one day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now()
			if dateFlag != "" {
				parsed, err := time.ParseInLocation("2006-01-02", dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = parsed
			}
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				sent, err := app.SendDailySummary(ctx, day)
				if err != nil {
					return err
				}
				if !sent {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "summary not sent (notifications off or rate limited)")
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "summary for %s sent\n", day.Format("2006-01-02"))
				return nil
			})
		},
	}
	emailSummary.Flags().StringVar(&dateFlag, "date", "", "day to summarise (defaults to today)")

	history.AddCommand(list, daily, summary, emailSummary)
	return history
}

func newActivityCmd(vaultPath *string) *cobra.Command {
	activity := &cobra.Command{Use: "activity", Short: "Page visits during study sessions"}

	var title string
	visit := &cobra.Command{
		Use:   "visit <url>",
		Short: "Record a page visit for the running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.ActivityCLI.Visit(ctx, args[0], title); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "visit recorded: %s\n", args[0])
				return nil
			})
		},
	}
	visit.Flags().StringVar(&title, "title", "", "page title")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the session being tracked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ActivityCLI.Show(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	completed := &cobra.Command{
		Use:   "completed",
		Short: "List finished tracked sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.ActivityCLI.Completed(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}

	var clearCompleted bool
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Drop the tracked session, or finished sessions with --completed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.ActivityCLI.Clear(ctx, clearCompleted); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "activity cleared")
				return nil
			})
		},
	}
	clear.Flags().BoolVar(&clearCompleted, "completed", false, "clear finished sessions instead")

	activity.AddCommand(visit, show, completed, clear)
	return activity
}

func newSessionCmd(vaultPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Inspect persisted timer state"}

	session.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the local and remote session records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "device: %s\n", app.SessionCLI.DeviceID())
				local, err := app.SessionCLI.Local(ctx, "")
				switch {
				case err == nil:
					_, _ = fmt.Fprintln(out, "local:")
					if err := writeJSON(out, local); err != nil {
						return err
					}
				case errors.Is(err, apperrors.ErrNoActiveSession):
					_, _ = fmt.Fprintln(out, "local: none")
				default:
					return err
				}
				remote, err := app.SessionCLI.Remote(ctx, app.UserID(ctx))
				switch {
				case err == nil:
					_, _ = fmt.Fprintln(out, "remote:")
					return writeJSON(out, remote)
				case errors.Is(err, apperrors.ErrNoActiveSession),
					errors.Is(err, apperrors.ErrNotSignedIn),
					errors.Is(err, apperrors.ErrNotConfigured):
					_, _ = fmt.Fprintf(out, "remote: %v\n", err)
					return nil
				default:
					return err
				}
			})
		},
	})

	return session
}

func newAuthCmd(vaultPath *string) *cobra.Command {
	auth := &cobra.Command{Use: "auth", Short: "Sign-in and preferences"}

	var token string
	login := &cobra.Command{
		Use:   "login --token <jwt>",
		Short: "Sign in with an identity token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(token) == "" {
				token = strings.TrimSpace(os.Getenv("DSABOOST_TOKEN"))
			}
			if token == "" {
				return fmt.Errorf("--token or DSABOOST_TOKEN is required")
			}
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.Login(ctx, token)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s>\n", out.DisplayName, out.Email)
				if out.FirstSignIn {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "welcome aboard")
				}
				return nil
			})
		},
	}
	login.Flags().StringVar(&token, "token", "", "identity token")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.IdentityCLI.Logout(ctx); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "signed out")
				return nil
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.IdentityCLI.WhoAmI(ctx)
				if errors.Is(err, apperrors.ErrNotSignedIn) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%s expires=%s\n",
					out.DisplayName, out.Email, out.UserID, out.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	var emails bool
	var durationMin, breakMin int
	prefs := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				var input identitydto.UpdatePreferencesInput
				if cmd.Flags().Changed("emails") {
					input.EmailNotifications = &emails
				}
				if cmd.Flags().Changed("duration") {
					seconds := durationMin * 60
					input.DefaultTimerDuration = &seconds
				}
				if cmd.Flags().Changed("break") {
					seconds := breakMin * 60
					input.BreakDuration = &seconds
				}
				var (
					out identitydto.PreferencesOutput
					err error
				)
				if input == (identitydto.UpdatePreferencesInput{}) {
					out, err = app.IdentityCLI.Preferences(ctx)
				} else {
					out, err = app.IdentityCLI.UpdatePreferences(ctx, input)
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "emails: %t\nduration: %d min\nbreak: %d min\n",
					out.EmailNotifications, out.DefaultTimerDuration/60, out.BreakDuration/60)
				return nil
			})
		},
	}
	prefs.Flags().BoolVar(&emails, "emails", true, "email notifications")
	prefs.Flags().IntVar(&durationMin, "duration", 25, "default session length in minutes")
	prefs.Flags().IntVar(&breakMin, "break", 5, "break length in minutes")

	auth.AddCommand(login, logout, whoami, prefs)
	return auth
}

func newChatCmd(vaultPath *string) *cobra.Command {
	var chatType, topic string
	chat := &cobra.Command{
		Use:   "chat",
		Short: "Ask the study assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				assistant, err := app.NewAssistant(chatType, topic)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for {
					_, _ = fmt.Fprint(out, "you> ")
					if !scanner.Scan() {
						return scanner.Err()
					}
					line := strings.TrimSpace(scanner.Text())
					switch line {
					case "":
						continue
					case "/quit", "/exit":
						return nil
					case "/reset":
						assistant.Reset()
						_, _ = fmt.Fprintln(out, "conversation cleared")
						continue
					}
					reply, err := assistant.Ask(ctx, line)
					if err != nil {
						if ctx.Err() != nil {
							return nil
						}
						_, _ = fmt.Fprintf(out, "error: %v\n", err)
						continue
					}
					_, _ = fmt.Fprintf(out, "assistant> %s\n", reply)
				}
			})
		},
	}
	chat.Flags().StringVar(&chatType, "type", "general", "conversation type: general|dsa-help")
	chat.Flags().StringVar(&topic, "topic", "", "current topic title")
	return chat
}

func newFunctionsCmd(vaultPath *string) *cobra.Command {
	functions := &cobra.Command{Use: "functions", Short: "Serverless function host"}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve /functions/v1/chat and /functions/v1/send-email",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(*vaultPath, func(ctx context.Context, app *bootstrap.App) error {
				listen := addr
				if listen == "" {
					listen = app.Config.Functions.ListenAddr
				}
				server, err := app.NewFunctionServer()
				if err != nil {
					return err
				}
				app.Logger.Info("function host listening", "op", "functions.serve", "addr", listen)
				return server.ListenAndServe(ctx, listen)
			})
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (defaults to functions.listen_addr)")

	functions.AddCommand(serve)
	return functions
}

func durationFor(ctx context.Context, app *bootstrap.App, minutes int) int {
	if minutes > 0 {
		return minutes * 60
	}
	return app.DefaultDuration(ctx)
}

func topicTitle(title, topicID string) string {
	if strings.TrimSpace(title) != "" {
		return title
	}
	return topicID
}

func printSnapshot(out io.Writer, snap timerdto.Snapshot) {
	state := "paused"
	if snap.IsActive {
		state = "running"
	}
	_, _ = fmt.Fprintf(out, "%s [%s] %s left=%s problems=%d\n",
		snap.TopicTitle, snap.TopicID, state, clock(snap.TimeLeft), snap.ProblemsSolved)
}

func printResult(out io.Writer, r timerdto.Result) {
	_, _ = fmt.Fprintf(out, "session saved: %s %d/%d min overtime=%d problems=%d (%s)\n",
		r.TopicTitle, r.ActualMinutes, r.PlannedMinutes, r.OvertimeMinutes, r.ProblemsSolved, r.Trigger)
}

func clock(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "+"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/60, seconds%60)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
