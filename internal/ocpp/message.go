// Package ocpp implements the OCPP-J 1.6 message envelope: the three-tuple
// wire format (Call, CallResult, CallError), the error taxonomy, the
// key-case translator, and the schema-driven payload validator. It contains
// no transport code and no action-specific business logic — those are
// supplied by callers (see internal/transport and internal/ocpp/v16).
package ocpp

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageTypeID identifies which of the three OCPP-J message kinds a wire
// array represents.
type MessageTypeID int

const (
	MessageTypeCall       MessageTypeID = 2
	MessageTypeCallResult MessageTypeID = 3
	MessageTypeCallError  MessageTypeID = 4
)

// Call is an OCPP request: [2, uniqueId, action, payload].
type Call struct {
	UniqueID string
	Action   string
	Payload  map[string]interface{}
}

// CallResult is a successful OCPP response: [3, uniqueId, payload]. Action
// is not part of the wire form; it is carried alongside for schema lookup
// once the message has been correlated to its originating Call.
type CallResult struct {
	UniqueID string
	Action   string
	Payload  map[string]interface{}
}

// CallError is an erroneous OCPP response: [4, uniqueId, code, description, details].
type CallError struct {
	UniqueID         string
	ErrorCode        ErrorCode
	ErrorDescription string
	ErrorDetails     map[string]interface{}
}

// GenerateUniqueID returns a fresh version-4 UUID string, the default
// unique-id generator for outbound Calls (§3).
func GenerateUniqueID() string {
	return uuid.NewString()
}

// NewCall builds a Call, defaulting payload to an empty object when nil.
func NewCall(uniqueID, action string, payload map[string]interface{}) *Call {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &Call{UniqueID: uniqueID, Action: action, Payload: payload}
}

// NewResult builds the CallResult that answers c, tagging it with c's
// action so later validation/translation can find the right schema.
func (c *Call) NewResult(payload map[string]interface{}) *CallResult {
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return &CallResult{UniqueID: c.UniqueID, Action: c.Action, Payload: payload}
}

// NewError builds the CallError that answers c for the given error. Errors
// outside the OCPP taxonomy default to InternalError / "An unexpected error
// occurred." / {} per §4.1.
func (c *Call) NewError(err error) *CallError {
	taxErr := AsTaxonomyError(err)
	return &CallError{
		UniqueID:         c.UniqueID,
		ErrorCode:        taxErr.Code,
		ErrorDescription: taxErr.Description,
		ErrorDetails:     taxErr.Details,
	}
}

// MarshalJSON encodes a Call to its canonical [2, uniqueId, action, payload] form.
func (c *Call) MarshalJSON() ([]byte, error) {
	payload := c.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return json.Marshal([]interface{}{MessageTypeCall, c.UniqueID, c.Action, payload})
}

// MarshalJSON encodes a CallResult to its canonical [3, uniqueId, payload] form.
func (cr *CallResult) MarshalJSON() ([]byte, error) {
	payload := cr.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return json.Marshal([]interface{}{MessageTypeCallResult, cr.UniqueID, payload})
}

// MarshalJSON encodes a CallError to its canonical
// [4, uniqueId, code, description, details] form.
func (ce *CallError) MarshalJSON() ([]byte, error) {
	details := ce.ErrorDetails
	if details == nil {
		details = map[string]interface{}{}
	}
	return json.Marshal([]interface{}{MessageTypeCallError, ce.UniqueID, ce.ErrorCode, ce.ErrorDescription, details})
}

// Decode classifies and parses a raw wire frame, returning one of *Call,
// *CallResult or *CallError. Failures are always *DecodeError values wrapping
// an *Error from the taxonomy (FormationViolation, ProtocolError or
// PropertyConstraintViolation, per §4.1); the caller can recover the original message's unique id (if
// any) from DecodeError.UniqueID to still answer with a CallError.
func Decode(data []byte) (interface{}, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, &DecodeError{Err: errorf(ErrorFormationViolation, "message is not a JSON array: %v", err)}
	}

	if len(arr) < 2 {
		return nil, &DecodeError{Err: errorf(ErrorProtocolError, "message array too short: expected at least 2 elements, got %d", len(arr))}
	}

	var typeID int
	if err := json.Unmarshal(arr[0], &typeID); err != nil {
		return nil, &DecodeError{Err: errorf(ErrorProtocolError, "missing or invalid message type id: %v", err)}
	}

	var uniqueID string
	_ = json.Unmarshal(arr[1], &uniqueID) // best-effort recovery for error replies

	switch MessageTypeID(typeID) {
	case MessageTypeCall:
		if len(arr) != 4 {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorProtocolError, "Call must have 4 elements, got %d", len(arr))}
		}
		var action string
		if err := json.Unmarshal(arr[2], &action); err != nil {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorProtocolError, "invalid action: %v", err)}
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(arr[3], &payload); err != nil {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorFormationViolation, "invalid payload: %v", err)}
		}
		return &Call{UniqueID: uniqueID, Action: action, Payload: payload}, nil

	case MessageTypeCallResult:
		if len(arr) != 3 {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorProtocolError, "CallResult must have 3 elements, got %d", len(arr))}
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(arr[2], &payload); err != nil {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorFormationViolation, "invalid payload: %v", err)}
		}
		return &CallResult{UniqueID: uniqueID, Payload: payload}, nil

	case MessageTypeCallError:
		if len(arr) != 5 {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorProtocolError, "CallError must have 5 elements, got %d", len(arr))}
		}
		var code string
		var description string
		var details map[string]interface{}
		if err := json.Unmarshal(arr[2], &code); err != nil {
			return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorProtocolError, "invalid error code: %v", err)}
		}
		_ = json.Unmarshal(arr[3], &description)
		_ = json.Unmarshal(arr[4], &details)
		return &CallError{UniqueID: uniqueID, ErrorCode: ErrorCode(code), ErrorDescription: description, ErrorDetails: details}, nil

	default:
		return nil, &DecodeError{UniqueID: uniqueID, Err: errorf(ErrorPropertyConstraintViolation, "message type id %d isn't valid", typeID)}
	}
}

// DecodeError wraps a taxonomy *Error raised while decoding a frame,
// carrying along the unique id recovered from the frame (if any) so the
// caller can still reply with a CallError.
type DecodeError struct {
	UniqueID string
	Err      *Error
}

func (e *DecodeError) Error() string { return e.Err.Error() }
func (e *DecodeError) Unwrap() error  { return e.Err }

// Recoverable reports whether enough of the frame was parsed to answer with
// a CallError (i.e. a unique id was found).
func (e *DecodeError) Recoverable() bool { return e.UniqueID != "" }

var _ fmt.Stringer = MessageTypeID(0)

func (m MessageTypeID) String() string {
	switch m {
	case MessageTypeCall:
		return "Call"
	case MessageTypeCallResult:
		return "CallResult"
	case MessageTypeCallError:
		return "CallError"
	default:
		return fmt.Sprintf("MessageTypeID(%d)", int(m))
	}
}
