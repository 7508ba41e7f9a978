package v16

import (
	"testing"
	"time"
)

func TestToPayloadIdTagInfo(t *testing.T) {
	payload, err := ToPayload(IdTagInfo{Status: AuthorizationStatusAccepted, ParentIdTag: "PARENT1"})
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if payload["status"] != string(AuthorizationStatusAccepted) {
		t.Errorf("status = %v, want %s", payload["status"], AuthorizationStatusAccepted)
	}
	if payload["parent_id_tag"] != "PARENT1" {
		t.Errorf("parent_id_tag = %v, want PARENT1", payload["parent_id_tag"])
	}
	if _, present := payload["expiry_date"]; present {
		t.Errorf("expiry_date should be omitted when unset, got %v", payload["expiry_date"])
	}
}

func TestToPayloadMeterValue(t *testing.T) {
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	mv := MeterValue{
		Timestamp: DateTime{Time: ts},
		SampledValue: []SampledValue{
			{Value: "1000", Measurand: MeasurandEnergyActiveImportRegister, Unit: UnitOfMeasureWh},
		},
	}

	payload, err := ToPayload(mv)
	if err != nil {
		t.Fatalf("ToPayload: %v", err)
	}
	if payload["timestamp"] != ts.Format(time.RFC3339) {
		t.Errorf("timestamp = %v, want %s", payload["timestamp"], ts.Format(time.RFC3339))
	}

	samples, ok := payload["sampled_value"].([]interface{})
	if !ok || len(samples) != 1 {
		t.Fatalf("sampled_value = %#v, want one-element list", payload["sampled_value"])
	}
	sample, ok := samples[0].(map[string]interface{})
	if !ok {
		t.Fatalf("sampled_value[0] = %#v, want map", samples[0])
	}
	if sample["value"] != "1000" {
		t.Errorf("value = %v, want 1000", sample["value"])
	}
	if sample["measurand"] != string(MeasurandEnergyActiveImportRegister) {
		t.Errorf("measurand = %v, want %s", sample["measurand"], MeasurandEnergyActiveImportRegister)
	}
}
