package v16

import "github.com/ruslanhut/ocpp-engine/internal/ocpp"

// NewSchemaRegistry builds the OCPP 1.6 schema table. Only the
// actions exercised by this engine's own tests and demo binaries are
// registered by hand here; a production deployment would generate the
// remaining hundreds of action schemas mechanically from the official
// OCPP 1.6 JSON schema sources (§9 Design Notes) and Register them the
// same way.
func NewSchemaRegistry() *ocpp.Registry {
	reg := ocpp.NewRegistry()

	reg.Register(&ocpp.Schema{
		Action:    string(ActionBootNotification),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"charge_point_vendor":       {Type: ocpp.TypeString, Required: true, MaxLength: 20},
			"charge_point_model":        {Type: ocpp.TypeString, Required: true, MaxLength: 20},
			"charge_point_serial_number": {Type: ocpp.TypeString, MaxLength: 25},
			"charge_box_serial_number":  {Type: ocpp.TypeString, MaxLength: 25},
			"firmware_version":          {Type: ocpp.TypeString, MaxLength: 50},
			"iccid":                     {Type: ocpp.TypeString, MaxLength: 20},
			"imsi":                      {Type: ocpp.TypeString, MaxLength: 20},
			"meter_type":                {Type: ocpp.TypeString, MaxLength: 25},
			"meter_serial_number":       {Type: ocpp.TypeString, MaxLength: 25},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionBootNotification),
		Direction: ocpp.DirectionResponse,
		Fields: map[string]ocpp.FieldSchema{
			"status": {Type: ocpp.TypeString, Required: true, Enum: []string{
				string(RegistrationStatusAccepted),
				string(RegistrationStatusPending),
				string(RegistrationStatusRejected),
			}},
			"current_time": {Type: ocpp.TypeString, Required: true},
			"interval":     {Type: ocpp.TypeInteger, Required: true},
		},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionHeartbeat),
		Direction: ocpp.DirectionRequest,
		Fields:    map[string]ocpp.FieldSchema{},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionHeartbeat),
		Direction: ocpp.DirectionResponse,
		Fields: map[string]ocpp.FieldSchema{
			"current_time": {Type: ocpp.TypeString, Required: true},
		},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionAuthorize),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"id_tag": {Type: ocpp.TypeString, Required: true, MaxLength: 20},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionAuthorize),
		Direction: ocpp.DirectionResponse,
		Fields: map[string]ocpp.FieldSchema{
			"id_tag_info": {Type: ocpp.TypeObject, Required: true, NestedSchema: idTagInfoSchema()},
		},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionChangeAvailability),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"connector_id": {Type: ocpp.TypeInteger, Required: true},
			"type":         {Type: ocpp.TypeString, Required: true, Enum: []string{"Inoperative", "Operative"}},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionChangeAvailability),
		Direction: ocpp.DirectionResponse,
		Fields: map[string]ocpp.FieldSchema{
			"status": {Type: ocpp.TypeString, Required: true, Enum: []string{"Accepted", "Rejected", "Scheduled"}},
		},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionStatusNotification),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"connector_id":      {Type: ocpp.TypeInteger, Required: true},
			"error_code":        {Type: ocpp.TypeString, Required: true, Enum: chargePointErrorCodeValues()},
			"status":            {Type: ocpp.TypeString, Required: true, Enum: chargePointStatusValues()},
			"info":              {Type: ocpp.TypeString, MaxLength: 50},
			"timestamp":         {Type: ocpp.TypeString},
			"vendor_id":         {Type: ocpp.TypeString, MaxLength: 255},
			"vendor_error_code": {Type: ocpp.TypeString, MaxLength: 50},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionStatusNotification),
		Direction: ocpp.DirectionResponse,
		Fields:    map[string]ocpp.FieldSchema{},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionMeterValues),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"connector_id":   {Type: ocpp.TypeInteger, Required: true},
			"transaction_id": {Type: ocpp.TypeInteger},
			"meter_value": {
				Type:       ocpp.TypeArray,
				Required:   true,
				ItemType:   ocpp.TypeObject,
				ItemSchema: meterValueSchema(),
			},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionMeterValues),
		Direction: ocpp.DirectionResponse,
		Fields:    map[string]ocpp.FieldSchema{},
	})

	reg.Register(&ocpp.Schema{
		Action:    string(ActionStopTransaction),
		Direction: ocpp.DirectionRequest,
		Fields: map[string]ocpp.FieldSchema{
			"transaction_id": {Type: ocpp.TypeInteger, Required: true},
			"id_tag":         {Type: ocpp.TypeString, MaxLength: 20},
			"meter_stop":     {Type: ocpp.TypeInteger, Required: true},
			"timestamp":      {Type: ocpp.TypeString, Required: true},
			"reason":         {Type: ocpp.TypeString, Enum: reasonValues()},
			"transaction_data": {
				Type:       ocpp.TypeArray,
				ItemType:   ocpp.TypeObject,
				ItemSchema: meterValueSchema(),
			},
		},
	})
	reg.Register(&ocpp.Schema{
		Action:    string(ActionStopTransaction),
		Direction: ocpp.DirectionResponse,
		Fields: map[string]ocpp.FieldSchema{
			"id_tag_info": {Type: ocpp.TypeObject, NestedSchema: idTagInfoSchema()},
		},
	})

	return reg
}

// idTagInfoSchema mirrors the IdTagInfo struct (types.go): a required
// AuthorizationStatus, plus the optional parent tag and expiry fields every
// response carrying one (Authorize, StartTransaction, StopTransaction) reuses.
func idTagInfoSchema() *ocpp.Schema {
	return &ocpp.Schema{
		Fields: map[string]ocpp.FieldSchema{
			"status":        {Type: ocpp.TypeString, Required: true, Enum: authorizationStatusValues()},
			"parent_id_tag": {Type: ocpp.TypeString, MaxLength: 20},
			"expiry_date":   {Type: ocpp.TypeString},
		},
	}
}

// meterValueSchema mirrors the MeterValue/SampledValue structs (types.go):
// each meter_value entry carries a timestamp and a list of sampled_value
// readings tagged with the Measurand/ReadingContext/Location/UnitOfMeasure
// enums.
func meterValueSchema() *ocpp.Schema {
	return &ocpp.Schema{
		Fields: map[string]ocpp.FieldSchema{
			"timestamp": {Type: ocpp.TypeString, Required: true},
			"sampled_value": {
				Type:     ocpp.TypeArray,
				Required: true,
				ItemType: ocpp.TypeObject,
				ItemSchema: &ocpp.Schema{
					Fields: map[string]ocpp.FieldSchema{
						"value":     {Type: ocpp.TypeString, Required: true},
						"context":   {Type: ocpp.TypeString, Enum: readingContextValues()},
						"format":    {Type: ocpp.TypeString, Enum: []string{"Raw", "SignedData"}},
						"measurand": {Type: ocpp.TypeString, Enum: measurandValues()},
						"phase":     {Type: ocpp.TypeString},
						"location":  {Type: ocpp.TypeString, Enum: locationValues()},
						"unit":      {Type: ocpp.TypeString, Enum: unitOfMeasureValues()},
					},
				},
			},
		},
	}
}

func authorizationStatusValues() []string {
	return []string{
		string(AuthorizationStatusAccepted),
		string(AuthorizationStatusBlocked),
		string(AuthorizationStatusExpired),
		string(AuthorizationStatusInvalid),
		string(AuthorizationStatusConcurrentTx),
	}
}

func chargePointStatusValues() []string {
	return []string{
		string(ChargePointStatusAvailable),
		string(ChargePointStatusPreparing),
		string(ChargePointStatusCharging),
		string(ChargePointStatusSuspendedEVSE),
		string(ChargePointStatusSuspendedEV),
		string(ChargePointStatusFinishing),
		string(ChargePointStatusReserved),
		string(ChargePointStatusUnavailable),
		string(ChargePointStatusFaulted),
	}
}

func chargePointErrorCodeValues() []string {
	return []string{
		string(ChargePointErrorNoError),
		string(ChargePointErrorConnectorLockFailure),
		string(ChargePointErrorEVCommunicationError),
		string(ChargePointErrorGroundFailure),
		string(ChargePointErrorHighTemperature),
		string(ChargePointErrorInternalError),
		string(ChargePointErrorLocalListConflict),
		string(ChargePointErrorOtherError),
		string(ChargePointErrorOverCurrentFailure),
		string(ChargePointErrorPowerMeterFailure),
		string(ChargePointErrorPowerSwitchFailure),
		string(ChargePointErrorReaderFailure),
		string(ChargePointErrorResetFailure),
		string(ChargePointErrorUnderVoltage),
		string(ChargePointErrorOverVoltage),
		string(ChargePointErrorWeakSignal),
	}
}

func measurandValues() []string {
	return []string{
		string(MeasurandCurrentExport),
		string(MeasurandCurrentImport),
		string(MeasurandCurrentOffered),
		string(MeasurandEnergyActiveExportRegister),
		string(MeasurandEnergyActiveImportRegister),
		string(MeasurandEnergyReactiveExportRegister),
		string(MeasurandEnergyReactiveImportRegister),
		string(MeasurandEnergyActiveExportInterval),
		string(MeasurandEnergyActiveImportInterval),
		string(MeasurandEnergyReactiveExportInterval),
		string(MeasurandEnergyReactiveImportInterval),
		string(MeasurandFrequency),
		string(MeasurandPowerActiveExport),
		string(MeasurandPowerActiveImport),
		string(MeasurandPowerFactor),
		string(MeasurandPowerOffered),
		string(MeasurandPowerReactiveExport),
		string(MeasurandPowerReactiveImport),
		string(MeasurandRPM),
		string(MeasurandSoC),
		string(MeasurandTemperature),
		string(MeasurandVoltage),
	}
}

func readingContextValues() []string {
	return []string{
		string(ReadingContextInterruptionBegin),
		string(ReadingContextInterruptionEnd),
		string(ReadingContextOther),
		string(ReadingContextSampleClock),
		string(ReadingContextSamplePeriodic),
		string(ReadingContextTransactionBegin),
		string(ReadingContextTransactionEnd),
		string(ReadingContextTrigger),
	}
}

func locationValues() []string {
	return []string{
		string(LocationBody),
		string(LocationCable),
		string(LocationEV),
		string(LocationInlet),
		string(LocationOutlet),
	}
}

func unitOfMeasureValues() []string {
	return []string{
		string(UnitOfMeasureWh),
		string(UnitOfMeasureKWh),
		string(UnitOfMeasureVarh),
		string(UnitOfMeasureKvarh),
		string(UnitOfMeasureW),
		string(UnitOfMeasureKW),
		string(UnitOfMeasureVA),
		string(UnitOfMeasureKVA),
		string(UnitOfMeasureVar),
		string(UnitOfMeasureKvar),
		string(UnitOfMeasureA),
		string(UnitOfMeasureV),
		string(UnitOfMeasureCelsius),
		string(UnitOfMeasureFahrenheit),
		string(UnitOfMeasureK),
		string(UnitOfMeasurePercent),
	}
}

func reasonValues() []string {
	return []string{
		string(ReasonEmergencyStop),
		string(ReasonEVDisconnected),
		string(ReasonHardReset),
		string(ReasonLocal),
		string(ReasonOther),
		string(ReasonPowerLoss),
		string(ReasonReboot),
		string(ReasonRemote),
		string(ReasonSoftReset),
		string(ReasonUnlockCommand),
		string(ReasonDeAuthorized),
	}
}
