package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	activityinadapter "dsaboost/internal/modules/activity/adapter/in"
	activityoutadapter "dsaboost/internal/modules/activity/adapter/out"
	activityusecase "dsaboost/internal/modules/activity/usecase"
	functionsinadapter "dsaboost/internal/modules/functions/adapter/in"
	functionsoutadapter "dsaboost/internal/modules/functions/adapter/out"
	functionsin "dsaboost/internal/modules/functions/port/in"
	functionsout "dsaboost/internal/modules/functions/port/out"
	functionsservice "dsaboost/internal/modules/functions/service"
	functionsusecase "dsaboost/internal/modules/functions/usecase"
	historyinadapter "dsaboost/internal/modules/history/adapter/in"
	historyoutadapter "dsaboost/internal/modules/history/adapter/out"
	historydomain "dsaboost/internal/modules/history/domain"
	historyin "dsaboost/internal/modules/history/port/in"
	historyservice "dsaboost/internal/modules/history/service"
	historyusecase "dsaboost/internal/modules/history/usecase"
	identityinadapter "dsaboost/internal/modules/identity/adapter/in"
	identityoutadapter "dsaboost/internal/modules/identity/adapter/out"
	identityin "dsaboost/internal/modules/identity/port/in"
	identityusecase "dsaboost/internal/modules/identity/usecase"
	notifyoutadapter "dsaboost/internal/modules/notify/adapter/out"
	notifydomain "dsaboost/internal/modules/notify/domain"
	notifydto "dsaboost/internal/modules/notify/dto"
	notifyin "dsaboost/internal/modules/notify/port/in"
	notifyusecase "dsaboost/internal/modules/notify/usecase"
	progressinadapter "dsaboost/internal/modules/progress/adapter/in"
	progressoutadapter "dsaboost/internal/modules/progress/adapter/out"
	progressservice "dsaboost/internal/modules/progress/service"
	progressusecase "dsaboost/internal/modules/progress/usecase"
	sessioninadapter "dsaboost/internal/modules/session/adapter/in"
	sessionoutadapter "dsaboost/internal/modules/session/adapter/out"
	sessionin "dsaboost/internal/modules/session/port/in"
	sessionservice "dsaboost/internal/modules/session/service"
	sessionusecase "dsaboost/internal/modules/session/usecase"
	timerinadapter "dsaboost/internal/modules/timer/adapter/in"
	timeroutadapter "dsaboost/internal/modules/timer/adapter/out"
	timerdto "dsaboost/internal/modules/timer/dto"
	timerout "dsaboost/internal/modules/timer/port/out"
	timerservice "dsaboost/internal/modules/timer/service"
	timerusecase "dsaboost/internal/modules/timer/usecase"
	"dsaboost/internal/platform/clock"
	"dsaboost/internal/platform/config"
	apperrors "dsaboost/internal/platform/errors"
	"dsaboost/internal/platform/id"
	"dsaboost/internal/platform/localstore"
	"dsaboost/internal/platform/logger"
	"dsaboost/internal/platform/ratelimit"
	uiapp "dsaboost/internal/ui/app"
)

type Options struct {
	// LogWriter receives the process log; the TUI points it at a file.
	LogWriter io.Writer
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	TimerCLI    timerinadapter.CLIHandler
	SessionCLI  sessioninadapter.CLIHandler
	HistoryCLI  historyinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler
	ActivityCLI activityinadapter.CLIHandler
	IdentityCLI identityinadapter.CLIHandler

	identity identityin.Usecase
	history  historyin.Usecase
	notify   notifyin.Usecase
	invoker  functionsout.Invoker
	closers  []func() error
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	log := logger.New(logger.Config{
		Writer:      opts.LogWriter,
		Format:      cfg.Log.Format,
		Environment: cfg.App.Environment,
		Level:       logger.ParseLevel(cfg.Log.Level),
	})
	app := &App{Config: cfg, Logger: log}
	if err := app.wire(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) wire(ctx context.Context) error {
	cfg := a.Config
	log := a.Logger
	clk := clock.SystemClock{}
	stateDir := filepath.Dir(cfg.DBPath)

	kv, err := localstore.NewFileKV(cfg.LocalDir, log)
	if err != nil {
		return fmt.Errorf("new local store: %w", err)
	}

	identityUC := identityusecase.NewInteractor(
		clk,
		identityoutadapter.NewJWTVerifier(cfg.Identity.JWTSecret, cfg.Identity.Issuer),
		identityoutadapter.NewVaultSessionStore(stateDir),
		identityoutadapter.NewYAMLPreferenceStore(stateDir),
		log,
	)
	a.identity = identityUC
	identityProvider := timeroutadapter.NewIdentityProvider(identityUC)

	sessionSvc := sessionservice.NewSessionService(clk, cfg.Session.StaleAfter)
	localSession := sessionusecase.NewLocalInteractor(sessionSvc, sessionoutadapter.NewLocalKVStore(kv), log)
	mirror, err := a.connectMirror(ctx, sessionSvc, localSession)
	if err != nil {
		return err
	}

	historyStore, err := historyoutadapter.NewSQLiteHistoryStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("new history store: %w", err)
	}
	a.closers = append(a.closers, historyStore.Close)
	historyUC := historyusecase.NewInteractor(
		historyservice.NewHistoryService(clk, id.UUID{}, nil),
		historyStore,
		historyoutadapter.NewVaultNoteWriter(cfg.VaultPath, nil),
		log,
	)

	catalog, err := progressoutadapter.NewEmbeddedCatalog()
	if err != nil {
		return fmt.Errorf("load topic catalog: %w", err)
	}
	progressStore, err := progressoutadapter.NewSQLiteProgressStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("new progress store: %w", err)
	}
	a.closers = append(a.closers, progressStore.Close)
	progressUC := progressusecase.NewInteractor(progressservice.NewProgressService(clk, id.UUID{}, catalog), progressStore)

	activityUC := activityusecase.NewInteractor(clk, activityoutadapter.NewLocalKVStore(kv), log)

	a.invoker = functionsoutadapter.NewHTTPInvoker(cfg.Functions.BaseURL, cfg.Functions.AnonKey, nil)
	a.notify, err = a.newNotifier()
	if err != nil {
		return err
	}

	backends := []timerout.Backend{}
	if mirror != nil {
		backends = append(backends, timeroutadapter.NewMirrorBackend(mirror, identityProvider, clk))
	}
	backends = append(backends, timeroutadapter.NewLocalBackend(localSession))

	timerUC := timerusecase.NewInteractor(timerusecase.Options{
		Clock:           clk,
		DefaultDuration: cfg.Timer.DefaultDuration,
		AutoComplete:    cfg.Timer.AutoComplete,
		Loop:            timerservice.NewTickLoop(clock.NewSystemTicker, cfg.Timer.TickInterval),
		Dispatcher:      timerservice.NewAsyncDispatcher(log),
		Backends:        backends,
		History:         timeroutadapter.NewHistoryRecorder(historyUC),
		Progress:        timeroutadapter.NewProgressRecorder(progressUC),
		Activity:        timeroutadapter.NewActivityTracker(activityUC),
		Notifier:        timeroutadapter.NewNotifier(a.notify),
		Identity:        identityProvider,
		Logger:          log,
	})
	// Close drains queued backend writes, so it must run before the stores close.
	a.closers = append([]func() error{timerUC.Close}, a.closers...)

	a.TimerCLI = timerinadapter.NewCLIHandler(timerUC)
	a.SessionCLI = sessioninadapter.NewCLIHandler(localSession, mirror)
	a.history = historyUC
	a.HistoryCLI = historyinadapter.NewCLIHandler(historyUC)
	a.ProgressCLI = progressinadapter.NewCLIHandler(progressUC)
	a.ActivityCLI = activityinadapter.NewCLIHandler(activityUC)
	a.IdentityCLI = identityinadapter.NewCLIHandler(identityUC)
	return nil
}

// connectMirror returns a nil Mirror when mirroring is disabled.
func (a *App) connectMirror(ctx context.Context, svc *sessionservice.SessionService, legacy *sessionusecase.LocalInteractor) (sessionin.Mirror, error) {
	cfg := a.Config.Mirror
	if !cfg.Enabled {
		return nil, nil
	}
	pool, err := sessionoutadapter.ConnectPostgres(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })
	repo := sessionoutadapter.NewPostgresActiveSessionRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	rdb := sessionoutadapter.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword)
	a.closers = append(a.closers, rdb.Close)

	mirror := sessionusecase.NewMirrorInteractor(svc, repo, sessionoutadapter.NewRedisChangeFeed(rdb, a.Logger), legacy, sessionusecase.MirrorOptions{
		DeviceID: id.NewDeviceID(clock.SystemClock{}.Now()),
		Throttle: cfg.Throttle,
		Logger:   a.Logger,
	})
	cancel := a.identity.OnSignOut(func(string) { mirror.SignedOut() })
	a.closers = append(a.closers, func() error { cancel(); return nil })
	return mirror, nil
}

func (a *App) newNotifier() (notifyin.Usecase, error) {
	cfg := a.Config
	opts := notifyusecase.Options{
		Policy:     notifydomain.Policy{Desktop: cfg.Notify.Desktop, EmailMinMinutes: cfg.Notify.EmailMinMinutes},
		Recipients: notifyoutadapter.NewIdentityRecipients(a.identity),
		Limiter:    ratelimit.PerHour(cfg.Notify.EmailPerHour),
		Logger:     a.Logger,
	}
	if cfg.Notify.Desktop {
		desktop, err := notifyoutadapter.ConnectDesktop()
		if err != nil {
			a.Logger.Debug("desktop notifications unavailable", "error", err)
		} else {
			opts.Desktop = desktop
		}
	}
	if a.invoker != nil {
		renderer, err := functionsservice.NewRenderer(cfg.App.URL)
		if err != nil {
			return nil, err
		}
		opts.Mailer = notifyoutadapter.NewFunctionsMailer(functionsusecase.NewMailerInteractor(a.invoker, renderer, cfg.Functions.AdminEmail))
	}
	return notifyusecase.NewInteractor(opts), nil
}

// Login signs in and, on the first sign-in of this user, sends the welcome
// and admin emails. Email failures are logged only.
func (a *App) Login(ctx context.Context, token string) (LoginOutput, error) {
	out, err := a.IdentityCLI.Login(ctx, token)
	if err != nil {
		return LoginOutput{}, err
	}
	if out.FirstSignIn {
		err = a.notify.Welcome(ctx, notifydto.WelcomeInput{
			UserID: out.Identity.UserID,
			Email:  out.Identity.Email,
			Name:   out.Identity.DisplayName,
		})
		if err != nil {
			a.Logger.Warn("welcome email failed", "op", "login", "user_id", out.Identity.UserID, "error", err)
		}
	}
	return LoginOutput{UserID: out.Identity.UserID, Email: out.Identity.Email, DisplayName: out.Identity.DisplayName, FirstSignIn: out.FirstSignIn}, nil
}

type LoginOutput struct {
	UserID      string
	Email       string
	DisplayName string
	FirstSignIn bool
}

// UserID is the owner of history and progress rows: the signed-in user or
// the local profile.
func (a *App) UserID(ctx context.Context) string {
	current, err := a.identity.Current(ctx)
	if err != nil {
		return timerusecase.LocalUser
	}
	return current.UserID
}

// DefaultDuration prefers the signed-in user's preference over config.
func (a *App) DefaultDuration(ctx context.Context) int {
	current, err := a.identity.Current(ctx)
	if err != nil {
		return a.Config.Timer.DefaultDuration
	}
	prefs, err := a.identity.Preferences(ctx, current.UserID)
	if err != nil || prefs.DefaultTimerDuration <= 0 {
		return a.Config.Timer.DefaultDuration
	}
	return prefs.DefaultTimerDuration
}

// summaryScan bounds how many recent entries are scanned for the day's topics.
const summaryScan = 200

// SendDailySummary emails the signed-in user the totals of the local date of
// day. It reports false when the user opted out or was rate limited.
func (a *App) SendDailySummary(ctx context.Context, day time.Time) (bool, error) {
	current, err := a.identity.Current(ctx)
	if err != nil {
		return false, err
	}
	date := day.Format(historydomain.DateLayout)
	logs, err := a.history.Daily(ctx, current.UserID, date, date)
	if err != nil {
		return false, fmt.Errorf("daily totals: %w", err)
	}
	summary, err := a.history.Summary(ctx, current.UserID)
	if err != nil {
		return false, fmt.Errorf("history summary: %w", err)
	}
	entries, err := a.history.List(ctx, current.UserID, summaryScan)
	if err != nil {
		return false, fmt.Errorf("history entries: %w", err)
	}

	input := notifydto.DailySummaryInput{UserID: current.UserID, Date: day, Streak: summary.StreakDays}
	for _, d := range logs {
		input.ProblemsSolved += d.ProblemsSolved
		input.StudyMinutes += d.StudyMinutes
	}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.StartTime.In(day.Location()).Format(historydomain.DateLayout) != date || seen[e.TopicTitle] {
			continue
		}
		seen[e.TopicTitle] = true
		input.TopicsStudied = append(input.TopicsStudied, e.TopicTitle)
	}
	return a.notify.DailySummary(ctx, input)
}

func (a *App) NewAssistant(chatType, topic string) (functionsin.Assistant, error) {
	if a.invoker == nil {
		return nil, fmt.Errorf("%w: functions.base_url", apperrors.ErrNotConfigured)
	}
	return functionsusecase.NewAssistant(a.invoker, chatType, topic), nil
}

// NewFunctionServer builds the function host from the functions.* settings.
func (a *App) NewFunctionServer() (*functionsinadapter.Server, error) {
	cfg := a.Config.Functions
	transport, err := functionsoutadapter.NewSMTPTransport(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUsername, cfg.SMTPPassword)
	if err != nil {
		return nil, err
	}
	host := functionsusecase.NewHostInteractor(functionsusecase.HostOptions{
		Model:     cfg.OpenAIModel,
		Provider:  functionsoutadapter.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, nil),
		Transport: transport,
		Logger:    a.Logger,
	})
	return functionsinadapter.NewServer(host, functionsinadapter.ServerOptions{
		AnonKey: cfg.AnonKey,
		Limiter: ratelimit.New(2, 10),
		Logger:  a.Logger,
	}), nil
}

func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(ctx context.Context, app *App) error {
	userID := app.UserID(ctx)
	model := uiapp.NewModel(ctx, uiapp.Deps{
		UserID:          userID,
		DefaultDuration: app.DefaultDuration(ctx),
		Timer:           app.TimerCLI,
		Progress:        app.ProgressCLI,
		History:         app.HistoryCLI,
		Activity:        app.ActivityCLI,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	stop := app.TimerCLI.Subscribe(func(snap timerdto.Snapshot) {
		program.Send(uiapp.TimerMsg{Snapshot: snap})
	})
	defer stop()
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
