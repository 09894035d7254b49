package rating

import (
	"strings"
	"testing"
)

func TestNormalizeStripsCodeFence(t *testing.T) {
	got := Normalize("```json\n{\"rating\":\"13+\"}\n```", false)
	if got.Rating != Rating13 || got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNormalizeBareFence(t *testing.T) {
	got := Normalize("```\n{\"rating\":\"21+\",\"reason\":\"vulgar\"}\n```", true)
	if got.Rating != Rating21 || got.Reason != "vulgar" || got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNormalizeMissingKeyDefaults(t *testing.T) {
	got := Normalize("{}", true)
	if got.Rating != RatingUnknown || got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Reason != ReasonNotRequested {
		t.Fatalf("expected default reason, got %q", got.Reason)
	}
}

func TestNormalizeMalformedJSON(t *testing.T) {
	got := Normalize("not json", true)
	if got.Rating != RatingError || !got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Reason != "Invalid response: not json" {
		t.Fatalf("expected raw text in reason, got %q", got.Reason)
	}
}

func TestNormalizeReasonIgnoredWhenNotRequested(t *testing.T) {
	got := Normalize(`{"rating":"17+","reason":"kekerasan"}`, false)
	if got.Rating != Rating17 {
		t.Fatalf("unexpected rating %q", got.Rating)
	}
	if got.Reason != ReasonNotRequested {
		t.Fatalf("expected reason sentinel, got %q", got.Reason)
	}
}

func TestNormalizeNonStringRating(t *testing.T) {
	got := Normalize(`{"rating":13,"reason":["x"]}`, true)
	if got.Rating != RatingUnknown || got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got.Reason != ReasonNotRequested {
		t.Fatalf("expected default reason, got %q", got.Reason)
	}
}

func TestNormalizeCanonicalizesLabels(t *testing.T) {
	cases := map[string]Rating{
		`{"rating":"SU (semua umur)"}`: RatingSU,
		`{"rating":" su "}`:            RatingSU,
		`{"rating":"17 +"}`:            Rating17,
		`{"rating":"PG-13"}`:           RatingUnknown,
		`{"rating":"Error"}`:           RatingUnknown,
	}
	for raw, want := range cases {
		if got := Normalize(raw, false); got.Rating != want || got.IsError {
			t.Fatalf("%s: got %+v want %q", raw, got, want)
		}
	}
}

func TestNormalizeProseWrappedObject(t *testing.T) {
	got := Normalize("Berikut hasilnya: {\"rating\":\"SU\"} semoga membantu", false)
	if got.Rating != RatingSU || got.IsError {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNormalizeRejectsNonObjects(t *testing.T) {
	for _, raw := range []string{"null", "[]", `"SU"`, "42", "", "```json\n```"} {
		got := Normalize(raw, false)
		if !got.IsError || got.Rating != RatingError {
			t.Fatalf("%q: expected error result, got %+v", raw, got)
		}
		if !strings.HasPrefix(got.Reason, "Invalid response: ") {
			t.Fatalf("%q: unexpected reason %q", raw, got.Reason)
		}
	}
}

func TestNormalizeAlwaysReturnsClosedSet(t *testing.T) {
	inputs := []string{
		"", "{", "}", "```", "``````", `{"rating":null}`, `{"rating":""}`,
		`{"rating":"21+"}`, `{"rating":{"nested":true}}`, "\x00\xff",
		"```json\n{\"rating\":\"13+\"}", `{"rating":"13+"} trailing`,
	}
	for _, raw := range inputs {
		for _, includeReason := range []bool{true, false} {
			got := Normalize(raw, includeReason)
			if !got.Rating.Valid() {
				t.Fatalf("%q: rating %q outside closed set", raw, got.Rating)
			}
			if got.Reason == "" {
				t.Fatalf("%q: empty reason", raw)
			}
		}
	}
}
