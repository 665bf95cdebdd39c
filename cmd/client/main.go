package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/puredelivery/client/api/transport"
	"github.com/puredelivery/client/domain"
	"github.com/puredelivery/client/internal/config"
	"github.com/puredelivery/client/internal/gateway"
	"github.com/puredelivery/client/internal/guard"
	"github.com/puredelivery/client/internal/otp"
	"github.com/puredelivery/client/internal/session"
	"github.com/puredelivery/client/internal/shell"
	"github.com/puredelivery/client/internal/theme"
	"github.com/puredelivery/client/pkg/logger"
	boltRepo "github.com/puredelivery/client/repository/bolt"
	addressUC "github.com/puredelivery/client/usecase/address"
	authUC "github.com/puredelivery/client/usecase/auth"
	profileUC "github.com/puredelivery/client/usecase/profile"
)

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	sessions  *session.Store
	themes    *theme.Store
	routes    *guard.Table
	prompt    *shell.UnauthorizedPrompt
	auth      *authUC.UseCase
	profile   *profileUC.UseCase
	addresses *addressUC.UseCase

	route   string
	otpFlow *otp.Flow
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := boltRepo.Open(cfg.Storage.Path, cfg.Storage.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open state store", zap.Error(err))
	}
	defer store.Close()

	themeStore := theme.NewStore(store, theme.ApplierFunc(func(t domain.Theme) {
		fmt.Printf("theme: %s\n", t)
	}), zapLogger)
	sessionStore := session.NewStore(store, zapLogger)

	// Explicit rehydration order: theme first (pure display), then session.
	if err := themeStore.Rehydrate(ctx); err != nil {
		zapLogger.Warn("theme rehydration failed", zap.Error(err))
	}
	if err := sessionStore.Rehydrate(ctx); err != nil {
		zapLogger.Warn("session rehydration failed", zap.Error(err))
	}

	api := gateway.New(gateway.Config{
		BaseURL:        cfg.API.BaseURL,
		RequestTimeout: cfg.API.RequestTimeout,
	}, sessionStore, nil, zapLogger)

	a := &app{
		cfg:      cfg,
		logger:   zapLogger,
		sessions: sessionStore,
		themes:   themeStore,
		routes:   guard.NewTable(),
		route:    guard.RouteHome,
	}

	a.auth = authUC.New(api, sessionStore, zapLogger)
	a.profile = profileUC.New(api, sessionStore, zapLogger)
	a.addresses = addressUC.New(api, sessionStore, zapLogger)
	sessionStore.SetValidator(a.auth)

	a.prompt = shell.NewUnauthorizedPrompt(sessionStore, shell.NavigatorFunc(a.navigate), zapLogger)
	api.SetUnauthorizedHandler(a.prompt.Trigger)

	a.run(ctx)
}

func (a *app) run(ctx context.Context) {
	fmt.Printf("%s (%s)\n", a.cfg.AppName, a.cfg.Environment)
	fmt.Println("commands: login register verify resend logout profile addresses theme whoami go quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if a.prompt.Shown() {
			fmt.Println("session expired, please log in again (press enter)")
			if !scanner.Scan() {
				return
			}
			a.prompt.Confirm()
			continue
		}

		fmt.Printf("[%s]> ", a.route)
		if !scanner.Scan() {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
		a.dispatch(ctx, fields[0], fields[1:])
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "login":
		a.login(ctx, args)
	case "register":
		a.register(ctx, args)
	case "verify":
		a.verify(ctx, args)
	case "resend":
		a.resend(ctx)
	case "logout":
		env := a.auth.Logout(ctx)
		a.report(env, "logged out")
		a.navigate(guard.RouteHome)
	case "profile":
		a.showProfile(ctx)
	case "addresses":
		a.showAddresses(ctx)
	case "theme":
		a.themes.Toggle()
	case "whoami":
		a.whoami(ctx)
	case "go":
		if len(args) != 1 {
			fmt.Println("usage: go <path>")
			return
		}
		a.navigate(args[0])
	default:
		fmt.Println("unknown command")
	}
}

func (a *app) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <email> <password>")
		return
	}
	req := transport.AuthenticateRequest{Email: args[0], Password: args[1]}
	if errs := req.Validate(); !errs.Ok() {
		printValidation(errs)
		return
	}
	env, result := a.auth.Authenticate(ctx, req)
	if !env.IsSuccess {
		fmt.Println(env.FailureReason())
		return
	}
	fmt.Printf("welcome back, %s\n", result.FullName)
	a.navigate(guard.RouteMain)
}

func (a *app) register(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: register <email> <password>")
		return
	}
	req := transport.CreateCustomerRequest{Email: args[0], Password: args[1]}
	if errs := req.Validate(args[1]); !errs.Ok() {
		printValidation(errs)
		return
	}
	env, _ := a.auth.Register(ctx, req)
	if !env.IsSuccess {
		fmt.Println(env.FailureReason())
		return
	}
	fmt.Println("registered, check your inbox for the confirmation code")
	a.startOtpFlow()
	a.navigate(guard.RouteVerifyEmail)
}

// startOtpFlow creates a fresh verification flow; the previous one, if any,
// is dropped like an unmounted form.
func (a *app) startOtpFlow() {
	a.otpFlow = otp.NewFlow(otp.Config{
		CodeLength:     a.cfg.OTP.CodeLength,
		ResendCooldown: a.cfg.OTP.ResendCooldown,
		AutoSubmit:     a.cfg.OTP.AutoSubmit,
	}, clockwork.NewRealClock(), a.submitOtp, a.logger)
}

func (a *app) submitOtp(code string) {
	email := a.sessions.Session().PendingVerificationEmail
	env := a.auth.VerifyOtp(context.Background(), email, code)
	if a.otpFlow != nil {
		a.otpFlow.Resolve(env.IsSuccess)
	}
	if env.IsSuccess {
		fmt.Println("email confirmed")
		a.navigate(guard.RouteMain)
		return
	}
	fmt.Println(env.FailureReason())
}

func (a *app) verify(_ context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: verify <code>")
		return
	}
	if a.otpFlow == nil {
		a.startOtpFlow()
	}
	// A full code typed in one go behaves like a paste.
	a.otpFlow.Paste(args[0])
	if a.otpFlow.State() == otp.StateCollecting && a.otpFlow.Code() == "" {
		fmt.Printf("enter the %d-digit code\n", a.cfg.OTP.CodeLength)
	}
}

func (a *app) resend(ctx context.Context) {
	if a.otpFlow == nil {
		a.startOtpFlow()
	}
	if !a.otpFlow.Resend() {
		fmt.Printf("resend available in %ds\n", a.otpFlow.ResendRemaining())
		return
	}
	email := a.sessions.Session().PendingVerificationEmail
	env := a.auth.ResendOtp(ctx, email)
	a.report(env, "code sent")
}

func (a *app) showProfile(ctx context.Context) {
	if !a.guardTo(guard.RouteProfile) {
		return
	}
	customer := a.sessions.Session().Customer
	env, info := a.profile.GetProfileInfo(ctx, customer.ID)
	if !env.IsSuccess {
		fmt.Println(env.FailureReason())
		return
	}
	fmt.Printf("%s %s <%s> phone=%s\n", info.FirstName, info.LastName, info.Email, info.Phone)
}

func (a *app) showAddresses(ctx context.Context) {
	if !a.guardTo(guard.RouteProfile) {
		return
	}
	customer := a.sessions.Session().Customer
	env, addresses := a.addresses.List(ctx, customer.ID)
	if !env.IsSuccess {
		fmt.Println(env.FailureReason())
		return
	}
	for _, addr := range addresses {
		marker := " "
		if addr.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %s: %s, %s\n", marker, addr.Label, addr.FullAddress, addr.City)
	}
}

func (a *app) whoami(ctx context.Context) {
	sess := a.sessions.Session()
	if !sess.IsAuthenticated() {
		fmt.Println("not logged in")
		return
	}
	if !a.sessions.CheckSession(ctx) {
		fmt.Println("session no longer valid")
		return
	}
	fmt.Printf("%s <%s> loyalty=%d\n", sess.Customer.FullName, sess.Customer.Email, sess.Customer.LoyaltyPoints)
}

// navigate re-evaluates the guards for the target path and follows
// redirects until an allowed route is reached.
func (a *app) navigate(path string) {
	for {
		decision := a.routes.Resolve(path, a.sessions.Session())
		if decision.Allow {
			a.route = path
			return
		}
		if decision.From != "" {
			a.logger.Debug("redirecting to login", zap.String("from", decision.From))
		}
		path = decision.RedirectTo
	}
}

// guardTo reports whether the session may enter the path, navigating away
// when it may not.
func (a *app) guardTo(path string) bool {
	decision := a.routes.Resolve(path, a.sessions.Session())
	if !decision.Allow {
		fmt.Printf("redirected to %s\n", decision.RedirectTo)
		a.navigate(decision.RedirectTo)
		return false
	}
	a.route = path
	return true
}

func (a *app) report(env transport.Envelope, success string) {
	if env.IsSuccess {
		fmt.Println(success)
		return
	}
	fmt.Println(env.FailureReason())
}

func printValidation(errs transport.ValidationErrors) {
	for field, msg := range errs {
		fmt.Printf("%s: %s\n", field, msg)
	}
}
