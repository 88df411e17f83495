package memory

import (
	"encoding/json"
	"testing"
	"time"
)

func TestID_DecodesNumbersAndStrings(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 42, "b": "face_7", "c": null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != "42" || got.B != "face_7" || got.C != "" {
		t.Fatalf("ids = %+v", got)
	}
	if err := json.Unmarshal([]byte(`{"a": true}`), &got); err == nil {
		t.Fatal("expected error for boolean id")
	}
}

func TestID_MarshalsNumericAsNumber(t *testing.T) {
	data, err := json.Marshal(labelRequest{ClusterID: "5", Label: "x"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"cluster_id":5,"label":"x"}` {
		t.Fatalf("json = %s", data)
	}
	data, _ = json.Marshal(ID("abc"))
	if string(data) != `"abc"` {
		t.Fatalf("json = %s", data)
	}
}

func TestID_NonCanonicalNumbersStayStrings(t *testing.T) {
	cases := map[ID]string{
		"007": `{"cluster_id":"007","label":"Bob"}`,
		"+5":  `{"cluster_id":"+5","label":"Bob"}`,
		"-3":  `{"cluster_id":-3,"label":"Bob"}`,
		"0":   `{"cluster_id":0,"label":"Bob"}`,
	}
	for id, want := range cases {
		data, err := json.Marshal(labelRequest{ClusterID: id, Label: "Bob"})
		if err != nil {
			t.Fatalf("Marshal(%q): %v", id, err)
		}
		if string(data) != want {
			t.Fatalf("Marshal(%q) = %s, want %s", id, data, want)
		}
	}
}

func TestParseTime_BackendLayouts(t *testing.T) {
	for _, in := range []string{
		"2025-03-01T10:20:30Z",
		"2025-03-01T10:20:30.123456",
		"2025-03-01 10:20:30",
	} {
		got := Document{CreatedAt: in}.ParsedCreatedAt()
		if got.IsZero() || got.Year() != 2025 || got.Month() != time.March {
			t.Fatalf("parse %q = %v", in, got)
		}
	}
	if !(Document{CreatedAt: "yesterday"}).ParsedCreatedAt().IsZero() {
		t.Fatal("garbage timestamp should parse to zero")
	}
}

func TestFaceUploadResponse_Unmatched(t *testing.T) {
	var resp FaceUploadResponse
	body := `{"faces":[{"face_id":"a","unmatched":true},{"face_id":"b","label":"Ana"}]}`
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	un := resp.Unmatched()
	if len(un) != 1 || un[0].FaceID != "a" {
		t.Fatalf("unmatched = %+v", un)
	}
}

func TestOutcome_FailureNeverLosesMessage(t *testing.T) {
	out := Failure[int](nil)
	if out.OK() || out.Message() != "Unknown error" {
		t.Fatalf("nil failure = %+v", out.Err())
	}
	ok := Success(3)
	if v, err := ok.Unpack(); err != nil || v != 3 || ok.Message() != "" {
		t.Fatalf("success = %v, %v", v, err)
	}
}
