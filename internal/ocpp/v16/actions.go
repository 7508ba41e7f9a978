package v16

// knownActions is the full OCPP 1.6 action set (Core plus the optional
// profiles), used by the session engine to decide between NotImplemented
// (action is part of this version but has no registered handler) and
// NotSupported (action isn't part of this version at all) per §4.5/§7.
var knownActions = map[string]bool{
	string(ActionAuthorize):              true,
	string(ActionBootNotification):       true,
	string(ActionChangeAvailability):     true,
	string(ActionChangeConfiguration):    true,
	string(ActionClearCache):             true,
	string(ActionDataTransfer):           true,
	string(ActionGetConfiguration):       true,
	string(ActionHeartbeat):              true,
	string(ActionMeterValues):            true,
	string(ActionRemoteStartTransaction): true,
	string(ActionRemoteStopTransaction):  true,
	string(ActionReset):                  true,
	string(ActionStartTransaction):       true,
	string(ActionStatusNotification):     true,
	string(ActionStopTransaction):        true,
	string(ActionUnlockConnector):        true,

	string(ActionGetDiagnostics):                true,
	string(ActionDiagnosticsStatusNotification): true,
	string(ActionFirmwareStatusNotification):    true,
	string(ActionUpdateFirmware):                true,

	string(ActionClearChargingProfile): true,
	string(ActionGetCompositeSchedule): true,
	string(ActionSetChargingProfile):   true,

	string(ActionTriggerMessage): true,

	string(ActionReserveNow):        true,
	string(ActionCancelReservation): true,

	// Local Auth List Management Profile
	"GetLocalListVersion": true,
	"SendLocalList":       true,
}

// IsKnownAction reports whether action is part of the OCPP 1.6 action set,
// regardless of whether a handler is currently registered for it.
func IsKnownAction(action string) bool {
	return knownActions[action]
}
