// Package session implements the bidirectional OCPP-J session engine: the
// inbound dispatch loop, the single-outstanding-call outbound discipline,
// and the correlation/timeout machinery described in §4.5 and §5.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ruslanhut/ocpp-engine/internal/ocpp"
	"github.com/ruslanhut/ocpp-engine/internal/registry"
	"github.com/ruslanhut/ocpp-engine/internal/transport"
)

// IsKnownActionFunc reports whether action belongs to the OCPP version's
// action set, used to pick NotImplemented vs NotSupported for an
// unregistered action (§4.5, §7). Callers pass v16.IsKnownAction (or an
// equivalent for another version) so this package stays version-agnostic.
type IsKnownActionFunc func(action string) bool

// DefaultResponseTimeout is used by Call when no per-call timeout is given.
const DefaultResponseTimeout = 30 * time.Second

// Session runs the engine for one OCPP-J connection. Exactly one inbound
// loop (Serve) and any number of concurrent outbound Call invocations may
// run against a Session; the call lock inside Call serializes them per §5.
type Session struct {
	transport     transport.Transport
	handlers      *registry.Registry
	schemas       *ocpp.Registry
	isKnownAction IsKnownActionFunc
	logger        *slog.Logger

	responseTimeout time.Duration
	idGenerator     func() string
	raiseOnCallError bool

	callMu sync.Mutex // serializes outbound Calls; held across send-and-wait

	pendingMu  sync.Mutex
	pendingUID string

	mailbox chan interface{} // capacity 1, single consumer (current outbound waiter)

	afterGroup errgroup.Group
	closeOnce  sync.Once
}

// Option customizes a Session at construction time.
type Option func(*Session)

// WithLogger overrides the default (slog.Default()) logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDGenerator overrides unique-id generation, e.g. for deterministic
// tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.idGenerator = gen }
}

// WithResponseTimeout overrides DefaultResponseTimeout.
func WithResponseTimeout(d time.Duration) Option {
	return func(s *Session) { s.responseTimeout = d }
}

// WithRaiseOnCallError disables the default suppress-CallError behavior
// (§4.5, §9 Supplemented Features): by default Call answers a CallError by
// returning (nil, nil), mirroring the original library's suppress=True
// default; with this option Call instead returns the reconstructed
// taxonomy error.
func WithRaiseOnCallError() Option {
	return func(s *Session) { s.raiseOnCallError = true }
}

// New builds a Session. handlers must already be frozen by the caller
// before Serve starts reading (the registry is read-only for the lifetime
// of the session, §5).
func New(tr transport.Transport, handlers *registry.Registry, schemas *ocpp.Registry, isKnownAction IsKnownActionFunc, opts ...Option) *Session {
	s := &Session{
		transport:       tr,
		handlers:        handlers,
		schemas:         schemas,
		isKnownAction:   isKnownAction,
		logger:          slog.Default(),
		responseTimeout: DefaultResponseTimeout,
		idGenerator:     ocpp.GenerateUniqueID,
		mailbox:         make(chan interface{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Serve runs the inbound loop until the transport closes or ctx is
// cancelled. It returns the error that ended the loop (never nil). Any
// dispatched after_action goroutines are drained before Serve returns.
func (s *Session) Serve(ctx context.Context) error {
	defer func() {
		s.closeMailbox()
		if err := s.afterGroup.Wait(); err != nil {
			s.logger.Warn("after_action handler returned an error", "error", err)
		}
	}()

	for {
		data, err := s.transport.Recv(ctx)
		if err != nil {
			return err
		}
		s.handleFrame(ctx, data)
	}
}

func (s *Session) handleFrame(ctx context.Context, data []byte) {
	msg, err := ocpp.Decode(data)
	if err != nil {
		decodeErr, ok := err.(*ocpp.DecodeError)
		if !ok {
			s.logger.Error("unexpected decode error type", "error", err)
			return
		}
		if !decodeErr.Recoverable() {
			s.logger.Warn("dropping unparseable frame with no recoverable unique id", "error", decodeErr.Err)
			return
		}
		reply := &ocpp.CallError{
			UniqueID:         decodeErr.UniqueID,
			ErrorCode:        decodeErr.Err.Code,
			ErrorDescription: decodeErr.Err.Description,
			ErrorDetails:     decodeErr.Err.Details,
		}
		s.send(ctx, reply)
		return
	}

	switch m := msg.(type) {
	case *ocpp.Call:
		s.handleCall(ctx, m)
	case *ocpp.CallResult:
		s.deliver(m)
	case *ocpp.CallError:
		s.deliver(m)
	}
}

// deliver hands a CallResult/CallError to the current outbound waiter
// without ever blocking the inbound loop (§4.5, §5): if the mailbox is full
// (or nobody is waiting) the message is dropped and logged.
func (s *Session) deliver(msg interface{}) {
	if s.Pending() == "" {
		s.logger.Warn("dropping unsolicited response: no outbound Call is pending", "message", fmt.Sprintf("%#v", msg))
		return
	}
	select {
	case s.mailbox <- msg:
	default:
		s.logger.Warn("dropping unsolicited or uncorrelated response", "message", fmt.Sprintf("%#v", msg))
	}
}

func (s *Session) handleCall(ctx context.Context, call *ocpp.Call) {
	entry, hasEntry := s.handlers.Lookup(call.Action)

	var reply interface{}
	var afterArgs map[string]interface{}

	switch {
	case !hasEntry || entry.OnAction == nil:
		reply = call.NewError(s.unknownActionError(call.Action))

	default:
		reply, afterArgs = s.invokeOnAction(ctx, call, entry)
	}

	s.send(ctx, reply)

	if hasEntry && entry.AfterAction != nil {
		handler := entry.AfterAction
		if afterArgs == nil {
			afterArgs = ocpp.TranslateKeysToSnake(call.Payload).(map[string]interface{})
		}
		s.afterGroup.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("after_action handler panicked", "action", call.Action, "panic", r)
				}
			}()
			handler(ctx, afterArgs)
			return nil
		})
	}
}

func (s *Session) unknownActionError(action string) *ocpp.Error {
	if s.isKnownAction != nil && s.isKnownAction(action) {
		return ocpp.NewError(ocpp.ErrorNotImplemented, fmt.Sprintf("No handler for %s registered.", action), nil)
	}
	return ocpp.NewError(ocpp.ErrorNotSupported, fmt.Sprintf("%s not supported by OCPP1.6.", action), nil)
}

// invokeOnAction runs the validate/dispatch/validate pipeline for one
// registered action and returns the reply envelope (*ocpp.CallResult or
// *ocpp.CallError) plus the snake_case args passed to the handler, reused
// for the after_action invocation.
func (s *Session) invokeOnAction(ctx context.Context, call *ocpp.Call, entry *registry.Entry) (interface{}, map[string]interface{}) {
	args := ocpp.AsStringMap(ocpp.TranslateKeysToSnake(call.Payload))

	if !entry.SkipSchemaValidation {
		if schema, ok := s.schemas.Lookup(call.Action, ocpp.DirectionRequest); ok {
			if failures := ocpp.Validate(schema, args); len(failures) > 0 {
				s.logger.Warn("inbound payload failed validation", "action", call.Action, "failures", fmt.Sprintf("%v", failures))
				return call.NewError(ocpp.NewError(ocpp.FirstErrorCode(failures), failures[0].Message, nil)), args
			}
		}
	}

	if entry.CallUniqueIDRequired {
		args["call_unique_id"] = call.UniqueID
	}

	result, err := entry.OnAction(ctx, args)
	if err != nil {
		s.logger.Warn("handler returned an error", "action", call.Action, "error", err)
		return call.NewError(err), args
	}

	result = ocpp.AsStringMap(ocpp.StripNulls(ocpp.AsStringMap(result)))

	if !entry.SkipSchemaValidation {
		if schema, ok := s.schemas.Lookup(call.Action, ocpp.DirectionResponse); ok {
			if failures := ocpp.Validate(schema, result); len(failures) > 0 {
				s.logger.Error("handler response failed validation", "action", call.Action, "failures", fmt.Sprintf("%v", failures))
				return call.NewError(ocpp.NewError(ocpp.FirstErrorCode(failures), failures[0].Message, nil)), args
			}
		}
	}

	camelPayload := ocpp.AsStringMap(ocpp.TranslateKeysToCamel(result))
	return call.NewResult(camelPayload), args
}

func (s *Session) send(ctx context.Context, envelope interface{}) {
	data, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("failed to marshal outbound envelope", "error", err)
		return
	}
	if err := s.transport.Send(ctx, data); err != nil {
		s.logger.Warn("failed to send outbound envelope", "error", err)
	}
}

func (s *Session) closeMailbox() {
	s.closeOnce.Do(func() {
		close(s.mailbox)
	})
}

// Call issues an outbound request and blocks until a correlated response
// arrives or timeout elapses (0 means DefaultResponseTimeout, per session
// config if overridden via WithResponseTimeout). Call acquires the
// session-wide call lock for its entire duration (§5): at most one Call is
// ever outstanding on a session at a time.
//
// On a CallError response, Call returns (nil, nil) by default (suppress
// mode, §9 Supplemented Features); WithRaiseOnCallError changes this to
// return the reconstructed taxonomy error.
func (s *Session) Call(ctx context.Context, action string, payload map[string]interface{}, timeout time.Duration) (map[string]interface{}, error) {
	if timeout <= 0 {
		timeout = s.responseTimeout
	}

	snakePayload := ocpp.AsStringMap(ocpp.StripNulls(ocpp.AsStringMap(payload)))

	if schema, ok := s.schemas.Lookup(action, ocpp.DirectionRequest); ok {
		if failures := ocpp.Validate(schema, snakePayload); len(failures) > 0 {
			return nil, ocpp.NewError(ocpp.FirstErrorCode(failures), failures[0].Message, nil)
		}
	}

	uniqueID := s.idGenerator()
	camelPayload := ocpp.AsStringMap(ocpp.TranslateKeysToCamel(snakePayload))
	call := ocpp.NewCall(uniqueID, action, camelPayload)

	data, err := json.Marshal(call)
	if err != nil {
		return nil, fmt.Errorf("session: marshal outbound call: %w", err)
	}

	s.callMu.Lock()
	defer s.callMu.Unlock()

	s.setPending(uniqueID)
	defer s.clearPending()

	if err := s.transport.Send(ctx, data); err != nil {
		return nil, &ocpp.TransportClosedError{Cause: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &ocpp.TimeoutError{Action: action, UniqueID: uniqueID, Timeout: timeout.String()}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-time.After(remaining):
			return nil, &ocpp.TimeoutError{Action: action, UniqueID: uniqueID, Timeout: timeout.String()}

		case msg, ok := <-s.mailbox:
			if !ok {
				return nil, &ocpp.TransportClosedError{}
			}
			switch m := msg.(type) {
			case *ocpp.CallResult:
				if m.UniqueID != uniqueID {
					s.logger.Warn("discarding uncorrelated CallResult", "want", uniqueID, "got", m.UniqueID)
					continue
				}
				return ocpp.AsStringMap(ocpp.TranslateKeysToSnake(m.Payload)), nil

			case *ocpp.CallError:
				if m.UniqueID != uniqueID {
					s.logger.Warn("discarding uncorrelated CallError", "want", uniqueID, "got", m.UniqueID)
					continue
				}
				return s.resolveCallError(m)
			}
		}
	}
}

func (s *Session) resolveCallError(m *ocpp.CallError) (map[string]interface{}, error) {
	if !ocpp.IsKnownErrorCode(m.ErrorCode) {
		return nil, &ocpp.UnknownCallErrorCodeError{Code: m.ErrorCode}
	}
	if !s.raiseOnCallError {
		s.logger.Warn("suppressing CallError response", "code", m.ErrorCode, "description", m.ErrorDescription)
		return nil, nil
	}
	return nil, ocpp.NewError(m.ErrorCode, m.ErrorDescription, m.ErrorDetails)
}

func (s *Session) setPending(uid string) {
	s.pendingMu.Lock()
	s.pendingUID = uid
	s.pendingMu.Unlock()
}

func (s *Session) clearPending() {
	s.pendingMu.Lock()
	s.pendingUID = ""
	s.pendingMu.Unlock()
}

// Pending reports the unique id of the currently outstanding Call, or "" if
// the session is idle. Exposed for tests/observability only.
func (s *Session) Pending() string {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	return s.pendingUID
}
