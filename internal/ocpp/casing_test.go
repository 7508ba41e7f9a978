package ocpp

import "testing"

func TestSnakeToCamelBasic(t *testing.T) {
	cases := map[string]string{
		"charge_point_vendor": "chargePointVendor",
		"id_tag":              "idTag",
		"meter_start":         "meterStart",
		"vendor_id":           "vendorId",
	}
	for snake, want := range cases {
		if got := SnakeToCamel(snake); got != want {
			t.Errorf("SnakeToCamel(%q) = %q, want %q", snake, got, want)
		}
	}
}

func TestSnakeToCamelAcronyms(t *testing.T) {
	if got := SnakeToCamel("state_of_charge_soc"); got != "stateOfChargeSoC" {
		t.Errorf("SnakeToCamel(state_of_charge_soc) = %q, want stateOfChargeSoC", got)
	}
	if got := SnakeToCamel("support_v2x"); got != "supportV2X" {
		t.Errorf("SnakeToCamel(support_v2x) = %q, want supportV2X", got)
	}
}

func TestCamelToSnakeBasic(t *testing.T) {
	cases := map[string]string{
		"chargePointVendor": "charge_point_vendor",
		"idTag":             "id_tag",
		"meterStart":        "meter_start",
		"vendorId":          "vendor_id",
	}
	for camel, want := range cases {
		if got := CamelToSnake(camel); got != want {
			t.Errorf("CamelToSnake(%q) = %q, want %q", camel, got, want)
		}
	}
}

func TestCamelToSnakeAcronyms(t *testing.T) {
	if got := CamelToSnake("stateOfChargeSoC"); got != "state_of_charge_soc" {
		t.Errorf("CamelToSnake(stateOfChargeSoC) = %q, want state_of_charge_soc", got)
	}
	if got := CamelToSnake("supportV2X"); got != "support_v2x" {
		t.Errorf("CamelToSnake(supportV2X) = %q, want support_v2x", got)
	}
}

// TestCaseRoundTrip is the literal §8 example: state_of_charge_soc round
// trips through stateOfChargeSoC and back.
func TestCaseRoundTrip(t *testing.T) {
	const snake = "state_of_charge_soc"
	const camel = "stateOfChargeSoC"

	if got := SnakeToCamel(snake); got != camel {
		t.Fatalf("SnakeToCamel(%q) = %q, want %q", snake, got, camel)
	}
	if got := CamelToSnake(camel); got != snake {
		t.Fatalf("CamelToSnake(%q) = %q, want %q", camel, got, snake)
	}
}

func TestTranslateKeysToCamelRecursive(t *testing.T) {
	in := map[string]interface{}{
		"id_tag": "abc",
		"nested": map[string]interface{}{
			"meter_start": 100,
		},
		"list": []interface{}{
			map[string]interface{}{"connector_id": 1},
		},
	}
	out := TranslateKeysToCamel(in).(map[string]interface{})
	if out["idTag"] != "abc" {
		t.Errorf("expected idTag key, got %#v", out)
	}
	nested := out["nested"].(map[string]interface{})
	if nested["meterStart"] != 100 {
		t.Errorf("expected nested meterStart key, got %#v", nested)
	}
	list := out["list"].([]interface{})
	item := list[0].(map[string]interface{})
	if item["connectorId"] != 1 {
		t.Errorf("expected connectorId key, got %#v", item)
	}
}

func TestTranslateKeysToSnakeRecursive(t *testing.T) {
	in := map[string]interface{}{
		"idTag": "abc",
		"nested": map[string]interface{}{
			"meterStart": 100,
		},
	}
	out := TranslateKeysToSnake(in).(map[string]interface{})
	if out["id_tag"] != "abc" {
		t.Errorf("expected id_tag key, got %#v", out)
	}
	nested := out["nested"].(map[string]interface{})
	if nested["meter_start"] != 100 {
		t.Errorf("expected meter_start key, got %#v", nested)
	}
}

func TestStripNullsIdempotent(t *testing.T) {
	in := map[string]interface{}{
		"a": nil,
		"b": "keep",
		"c": map[string]interface{}{
			"d": nil,
			"e": 1,
		},
	}
	once := StripNulls(in)
	twice := StripNulls(once)

	onceMap := once.(map[string]interface{})
	twiceMap := twice.(map[string]interface{})

	if len(onceMap) != len(twiceMap) {
		t.Fatalf("stripping twice changed shape: %#v vs %#v", onceMap, twiceMap)
	}
	if _, present := onceMap["a"]; present {
		t.Errorf("expected nil-valued key a to be stripped")
	}
	if onceMap["b"] != "keep" {
		t.Errorf("expected non-nil key b to survive")
	}
}
