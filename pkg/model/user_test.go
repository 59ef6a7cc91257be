package model

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
)

func TestUserTypeDecoding(t *testing.T) {
	cases := map[string]UserType{
		`"ADMIN"`: UserTypeAdmin,
		`"pilot"`: UserTypePilot,
		`"3"`:     UserTypeMerchant,
		`0`:       UserTypeCustomer,
		`2`:       UserTypeAdmin,
	}
	for raw, want := range cases {
		var got UserType
		if err := jsoniter.Unmarshal([]byte(raw), &got); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		if got != want {
			t.Errorf("decode %s = %v, want %v", raw, got, want)
		}
	}

	var bad UserType
	if err := jsoniter.Unmarshal([]byte(`"ROOT"`), &bad); err == nil {
		t.Fatal("expected error for unknown user type")
	}
	if UserType(9).String() != "UNKNOWN(9)" {
		t.Fatalf("String() = %s", UserType(9))
	}
}

func TestEnvelopeTimestamp(t *testing.T) {
	var numeric, text Envelope[string]
	if err := jsoniter.Unmarshal([]byte(`{"code":200,"message":"ok","data":"x","timestamp":1700000000000}`), &numeric); err != nil {
		t.Fatal(err)
	}
	if err := jsoniter.Unmarshal([]byte(`{"code":500,"message":"no","data":null,"timestamp":"2024-05-01T10:00:00"}`), &text); err != nil {
		t.Fatal(err)
	}
	if !numeric.OK() || numeric.Timestamp != "1700000000000" || numeric.Data != "x" {
		t.Fatalf("numeric envelope = %+v", numeric)
	}
	if text.OK() || text.Timestamp != "2024-05-01T10:00:00" {
		t.Fatalf("text envelope = %+v", text)
	}
}

func TestUserHelpers(t *testing.T) {
	u := User{Username: "pilot01", Status: 1}
	if !u.Enabled() || u.DisplayName() != "pilot01" {
		t.Fatalf("unexpected helpers for %+v", u)
	}
	u.Nickname = "飞手一号"
	u.Status = 0
	if u.Enabled() || u.DisplayName() != "飞手一号" {
		t.Fatalf("unexpected helpers for %+v", u)
	}
}
