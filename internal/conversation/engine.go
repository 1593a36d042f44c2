// ABOUTME: Conversation engine driving registration, entry capture and entry review
// ABOUTME: Serializes turns per identity and turns collaborator faults into user-visible outcomes

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/Enne678/RGZ-1SEM/internal/events"
	"github.com/Enne678/RGZ-1SEM/internal/rates"
	"github.com/Enne678/RGZ-1SEM/internal/session"
	"github.com/Enne678/RGZ-1SEM/internal/store"
)

// DefaultTimeout bounds each ledger or rate call when Config.Timeout is unset
const DefaultTimeout = 10 * time.Second

// Ledger is what the engine needs from storage
type Ledger interface {
	AccountExists(ctx context.Context, id string) (bool, error)
	GetAccount(ctx context.Context, id string) (*store.Account, error)
	CreateAccount(ctx context.Context, account *store.Account) error
	CreateEntry(ctx context.Context, entry *store.Entry) error
	ListEntries(ctx context.Context, accountID string) ([]*store.Entry, error)
}

// RateLookup is what the engine needs from the rate service
type RateLookup interface {
	Lookup(ctx context.Context, currency string) (rates.Quote, error)
}

// Config holds engine settings
type Config struct {
	// BaseCurrency is the currency every amount is stored in
	BaseCurrency string
	// Currencies are the foreign display currencies offered next to the base
	Currencies []string
	// Timeout bounds each external call
	Timeout time.Duration
}

// Engine handles events for every identity
type Engine struct {
	cfg       Config
	ledger    Ledger
	rates     RateLookup
	sessions  *session.Store
	publisher events.Publisher
	logger    *slog.Logger

	commands   map[string]commandHandler
	currencies []string

	now   func() time.Time
	newID func() string
}

type commandHandler func(e *Engine, ctx context.Context, identity string) Response

// commandAliases maps every accepted command name to its canonical name
var commandAliases = map[string]string{
	"start":         "start",
	"help":          "start",
	"register":      "register",
	"reg":           "register",
	"add_entry":     "add_entry",
	"add_operation": "add_entry",
	"operations":    "operations",
	"cancel":        "cancel",
}

// New creates an engine. publisher and logger may be nil.
func New(cfg Config, ledger Ledger, lookup RateLookup, sessions *session.Store, publisher events.Publisher, logger *slog.Logger) (*Engine, error) {
	base := rates.Normalize(cfg.BaseCurrency)
	if base == "" {
		return nil, errors.New("base currency is required")
	}
	if ledger == nil || lookup == nil || sessions == nil {
		return nil, errors.New("ledger, rate lookup and session store are required")
	}

	currencies := []string{base}
	for _, c := range cfg.Currencies {
		c = rates.Normalize(c)
		if c == "" || slices.Contains(currencies, c) {
			return nil, fmt.Errorf("invalid or duplicate display currency %q", c)
		}
		currencies = append(currencies, c)
	}

	cfg.BaseCurrency = base
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		cfg:        cfg,
		ledger:     ledger,
		rates:      lookup,
		sessions:   sessions,
		publisher:  publisher,
		logger:     logger.With("component", "conversation"),
		currencies: currencies,
		commands: map[string]commandHandler{
			"start":      (*Engine).startCommand,
			"register":   (*Engine).registerCommand,
			"add_entry":  (*Engine).addEntryCommand,
			"operations": (*Engine).operationsCommand,
		},
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}, nil
}

// Handle processes one event for identity and returns the reply.
// Turns for the same identity run one at a time, including the ledger and
// rate calls they make.
func (e *Engine) Handle(ctx context.Context, identity string, ev Event) (resp Response) {
	unlock := e.sessions.Lock(identity)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("panic while handling event",
				"identity", identity,
				"kind", ev.Kind.String(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			e.sessions.Clear(identity)
			resp = reply(MsgFailure)
		}
	}()

	st := e.sessions.Get(identity)

	var name string
	if ev.Kind == KindCommand {
		name = commandAliases[normalizeCommand(ev.Value)]
	}
	if name == "cancel" {
		return e.cancel(identity, st)
	}

	if st.Active() {
		return e.advance(ctx, identity, st, ev)
	}

	handler, ok := e.commands[name]
	if !ok {
		e.logger.Debug("ignoring event outside a flow", "identity", identity, "kind", ev.Kind.String())
		return Response{}
	}
	return handler(e, ctx, identity)
}

func (e *Engine) cancel(identity string, st session.State) Response {
	if !st.Active() {
		return reply(MsgNothingToCancel)
	}
	e.sessions.Clear(identity)
	e.logger.Info("flow cancelled", "identity", identity, "flow", st.Flow, "step", st.Step)
	return reply(MsgCancelled)
}

// external returns a context bounded by the configured call timeout
func (e *Engine) external(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.Timeout)
}

// fail ends the active flow after a collaborator error
func (e *Engine) fail(identity, op string, err error) Response {
	e.logger.Error(op+" failed", "identity", identity, "error", err)
	e.sessions.Clear(identity)
	return reply(MsgFailure)
}

// enter starts flow at its first step and returns that step's prompt
func (e *Engine) enter(identity string, flow session.Flow) Response {
	st := session.State{Flow: flow, Step: session.FirstStep(flow)}
	if err := e.sessions.Set(identity, st); err != nil {
		return e.fail(identity, "starting flow", err)
	}
	e.logger.Debug("flow started", "identity", identity, "flow", flow)
	return e.prompt(st.Step)
}

// registered checks the account precondition. ok is false when resp must be sent as is.
func (e *Engine) registered(ctx context.Context, identity string) (exists bool, resp Response, ok bool) {
	callCtx, cancel := e.external(ctx)
	defer cancel()

	exists, err := e.ledger.AccountExists(callCtx, identity)
	if err != nil {
		e.logger.Error("checking account failed", "identity", identity, "error", err)
		return false, reply(MsgFailure), false
	}
	return exists, Response{}, true
}

// startCommand greets registered users by name. A failed lookup only
// loses the greeting.
func (e *Engine) startCommand(ctx context.Context, identity string) Response {
	callCtx, cancel := e.external(ctx)
	defer cancel()

	account, err := e.ledger.GetAccount(callCtx, identity)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return reply(MsgWelcome)
	case err != nil:
		e.logger.Warn("looking up account for greeting failed", "identity", identity, "error", err)
		return reply(MsgWelcome)
	}
	return reply(fmt.Sprintf(MsgWelcomeBack, account.Name) + "\n\n" + MsgWelcome)
}

func (e *Engine) registerCommand(ctx context.Context, identity string) Response {
	exists, resp, ok := e.registered(ctx, identity)
	if !ok {
		return resp
	}
	if exists {
		return reply(MsgAlreadyRegistered)
	}
	return e.enter(identity, session.FlowRegistration)
}

func (e *Engine) addEntryCommand(ctx context.Context, identity string) Response {
	exists, resp, ok := e.registered(ctx, identity)
	if !ok {
		return resp
	}
	if !exists {
		return reply(MsgMustRegister)
	}
	return e.enter(identity, session.FlowAddEntry)
}

func (e *Engine) operationsCommand(ctx context.Context, identity string) Response {
	exists, resp, ok := e.registered(ctx, identity)
	if !ok {
		return resp
	}
	if !exists {
		return reply(MsgMustRegister)
	}
	return e.enter(identity, session.FlowViewEntries)
}

// prompt is the question asked when entering step
func (e *Engine) prompt(step session.Step) Response {
	switch step {
	case session.StepAwaitName:
		return reply(MsgAskName)
	case session.StepAwaitType:
		return Response{Text: MsgChooseKind, Menu: kindMenu()}
	case session.StepAwaitAmount:
		return reply(fmt.Sprintf(MsgAskAmount, e.cfg.BaseCurrency))
	case session.StepAwaitDate:
		return reply(MsgAskDate)
	case session.StepAwaitComment:
		return reply(MsgAskComment)
	case session.StepAwaitCurrency:
		return Response{Text: MsgChooseCurrency, Menu: e.currencyMenu()}
	}
	return Response{}
}

func (e *Engine) currencyMenu() []Option {
	menu := make([]Option, 0, len(e.currencies))
	for _, c := range e.currencies {
		menu = append(menu, Option{Token: currencyTokenPrefix + c, Label: c})
	}
	return menu
}
