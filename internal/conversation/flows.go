// ABOUTME: Step transition table for the registration, add-entry and view-entries flows
// ABOUTME: Each step declares the event shape it accepts and how valid input advances the flow

package conversation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Enne678/RGZ-1SEM/internal/events"
	"github.com/Enne678/RGZ-1SEM/internal/rates"
	"github.com/Enne678/RGZ-1SEM/internal/session"
	"github.com/Enne678/RGZ-1SEM/internal/store"
	"github.com/Enne678/RGZ-1SEM/internal/summary"
)

// Choice token prefixes
const (
	kindTokenPrefix     = "kind:"
	currencyTokenPrefix = "currency:"
)

// turn is the context of one event inside an active flow
type turn struct {
	ctx      context.Context
	identity string
	state    session.State
	value    string
}

// transition describes one step: the event kind it takes and its handler.
// wrongShape, when set, replaces the prompt for events of another kind.
type transition struct {
	accepts    EventKind
	handle     func(e *Engine, t *turn) Response
	wrongShape string
}

var transitions = map[session.Step]transition{
	session.StepAwaitName:     {accepts: KindText, handle: (*Engine).submitName},
	session.StepAwaitType:     {accepts: KindChoice, handle: (*Engine).chooseKind},
	session.StepAwaitAmount:   {accepts: KindText, handle: (*Engine).submitAmount},
	session.StepAwaitDate:     {accepts: KindText, handle: (*Engine).submitDate},
	session.StepAwaitComment:  {accepts: KindText, handle: (*Engine).submitComment, wrongShape: MsgInvalidComment},
	session.StepAwaitCurrency: {accepts: KindChoice, handle: (*Engine).chooseCurrency},
}

func kindMenu() []Option {
	return []Option{
		{Token: kindTokenPrefix + string(store.KindIncome), Label: kindLabel(store.KindIncome)},
		{Token: kindTokenPrefix + string(store.KindExpense), Label: kindLabel(store.KindExpense)},
	}
}

func kindLabel(k store.Kind) string {
	if k == store.KindExpense {
		return "Expense"
	}
	return "Income"
}

// advance routes an event to the active step
func (e *Engine) advance(ctx context.Context, identity string, st session.State, ev Event) Response {
	tr, ok := transitions[st.Step]
	if !ok {
		e.logger.Warn("no transition for stored step", "identity", identity, "flow", st.Flow, "step", st.Step)
		e.sessions.Clear(identity)
		return reply(MsgFailure)
	}

	if ev.Kind != tr.accepts {
		e.logger.Debug("unexpected event shape", "identity", identity, "step", st.Step, "kind", ev.Kind.String())
		return e.reprompt(st.Step, tr.wrongShape)
	}

	return tr.handle(e, &turn{ctx: ctx, identity: identity, state: st, value: ev.Value})
}

// reprompt repeats the step's question, optionally replacing its text
func (e *Engine) reprompt(step session.Step, text string) Response {
	resp := e.prompt(step)
	switch {
	case text != "":
		resp.Text = text
	case len(resp.Menu) > 0:
		resp.Text = MsgPickOption + "\n" + resp.Text
	}
	return resp
}

// moveTo stores the state at the next step and asks its question
func (e *Engine) moveTo(t *turn, preface string) Response {
	t.state.Step = session.NextStep(t.state.Flow, t.state.Step)
	if err := e.sessions.Set(t.identity, t.state); err != nil {
		return e.fail(t.identity, "saving dialog state", err)
	}
	resp := e.prompt(t.state.Step)
	if preface != "" {
		resp.Text = preface + "\n\n" + resp.Text
	}
	return resp
}

func (e *Engine) submitName(t *turn) Response {
	name := strings.TrimSpace(t.value)
	if name == "" {
		return e.reprompt(t.state.Step, MsgInvalidName)
	}

	ctx, cancel := e.external(t.ctx)
	defer cancel()

	err := e.ledger.CreateAccount(ctx, &store.Account{
		ID:        t.identity,
		Name:      name,
		CreatedAt: e.now(),
	})
	if errors.Is(err, store.ErrAccountExists) {
		e.sessions.Clear(t.identity)
		return reply(MsgAlreadyRegistered)
	}
	if err != nil {
		return e.fail(t.identity, "creating account", err)
	}

	e.sessions.Clear(t.identity)
	e.logger.Info("account registered", "identity", t.identity)
	return reply(MsgRegistered)
}

func (e *Engine) chooseKind(t *turn) Response {
	kind, err := store.ParseKind(strings.TrimPrefix(t.value, kindTokenPrefix))
	if err != nil || !strings.HasPrefix(t.value, kindTokenPrefix) {
		return e.reprompt(t.state.Step, "")
	}
	t.state.Fields[session.FieldKind] = string(kind)
	return e.moveTo(t, fmt.Sprintf(MsgSelectedKind, kindLabel(kind)))
}

func (e *Engine) submitAmount(t *turn) Response {
	amount, err := parseAmount(t.value)
	if err != nil {
		return e.reprompt(t.state.Step, MsgInvalidAmount)
	}
	t.state.Fields[session.FieldAmount] = amount.String()
	return e.moveTo(t, "")
}

func (e *Engine) submitDate(t *turn) Response {
	date, err := parseDate(t.value)
	if err != nil {
		return e.reprompt(t.state.Step, MsgInvalidDate)
	}
	t.state.Fields[session.FieldDate] = date.Format(store.DateLayout)
	return e.moveTo(t, "")
}

func (e *Engine) submitComment(t *turn) Response {
	t.state.Fields[session.FieldComment] = strings.TrimSpace(t.value)

	entry, err := e.entryFromFields(t.identity, t.state.Fields)
	if err != nil {
		return e.fail(t.identity, "assembling entry", err)
	}

	ctx, cancel := e.external(t.ctx)
	defer cancel()
	if err := e.ledger.CreateEntry(ctx, entry); err != nil {
		return e.fail(t.identity, "creating entry", err)
	}

	e.publish(t.ctx, entry)
	e.sessions.Clear(t.identity)
	e.logger.Info("entry recorded", "identity", t.identity, "entry_id", entry.ID, "kind", entry.Kind)
	return reply(MsgEntryAdded)
}

// entryFromFields builds the entry from accumulated fields
func (e *Engine) entryFromFields(identity string, fields map[string]string) (*store.Entry, error) {
	kind, err := store.ParseKind(fields[session.FieldKind])
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(fields[session.FieldAmount])
	if err != nil {
		return nil, fmt.Errorf("stored amount: %w", err)
	}
	date, err := time.Parse(store.DateLayout, fields[session.FieldDate])
	if err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	return &store.Entry{
		ID:        e.newID(),
		AccountID: identity,
		Date:      date,
		Amount:    amount,
		Kind:      kind,
		Comment:   fields[session.FieldComment],
		CreatedAt: e.now(),
	}, nil
}

// publish announces a recorded entry; failures are logged only
func (e *Engine) publish(ctx context.Context, entry *store.Entry) {
	ctx, cancel := e.external(ctx)
	defer cancel()

	if err := e.publisher.Publish(ctx, events.NewEntryRecorded(entry, e.cfg.BaseCurrency)); err != nil {
		e.logger.Warn("publishing entry event failed", "entry_id", entry.ID, "error", err)
	}
}

func (e *Engine) chooseCurrency(t *turn) Response {
	currency := rates.Normalize(strings.TrimPrefix(t.value, currencyTokenPrefix))
	if !strings.HasPrefix(t.value, currencyTokenPrefix) || !e.offers(currency) {
		return e.reprompt(t.state.Step, "")
	}
	selected := fmt.Sprintf(MsgSelectedCurrency, currency)

	quote := rates.BaseQuote(currency)
	if currency != e.cfg.BaseCurrency {
		ctx, cancel := e.external(t.ctx)
		q, err := e.rates.Lookup(ctx, currency)
		cancel()
		if err != nil {
			e.logger.Warn("rate lookup failed", "identity", t.identity, "currency", currency, "error", err)
			e.sessions.Clear(t.identity)
			return reply(selected + "\n\n" + MsgRateUnavailable)
		}
		quote = q
	}

	ctx, cancel := e.external(t.ctx)
	defer cancel()
	entries, err := e.ledger.ListEntries(ctx, t.identity)
	if err != nil {
		return e.fail(t.identity, "listing entries", err)
	}

	text, err := summary.Render(currency, quote, entries)
	if err != nil {
		return e.fail(t.identity, "rendering summary", err)
	}

	e.sessions.Clear(t.identity)
	return reply(selected + "\n\n" + text)
}

func (e *Engine) offers(currency string) bool {
	return slices.Contains(e.currencies, currency)
}
