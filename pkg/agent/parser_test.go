package agent

import (
	"errors"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"action":"read"}`, `{"action":"read"}`},
		{"plain fences", "```\n{\"action\":\"read\"}\n```", `{"action":"read"}`},
		{"json tag", "```json\n{\"action\":\"read\"}\n```", `{"action":"read"}`},
		{"prose around fences", "Sure, here you go:\n```json\n{\"a\":1}\n```\nLet me know!", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripCodeFences(tc.in); got != tc.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func emptyIndex() *shortIDIndex {
	return buildShortIDIndex(nil)
}

func TestParseResponseActions(t *testing.T) {
	for _, action := range []string{"create", "read", "update", "delete"} {
		cmd, err := parseResponse(`{"action":"`+action+`"}`, emptyIndex())
		if err != nil {
			t.Fatalf("parseResponse(%s): %v", action, err)
		}
		if cmd.Action != action {
			t.Errorf("action = %q, want %q", cmd.Action, action)
		}
	}
}

func TestParseResponseNormalizesActionCase(t *testing.T) {
	cmd, err := parseResponse(`{"action":" CREATE "}`, emptyIndex())
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if cmd.Action != ActionCreate {
		t.Errorf("action = %q, want create", cmd.Action)
	}
}

func TestParseResponseUnknownAction(t *testing.T) {
	_, err := parseResponse(`{"action":"destroy"}`, emptyIndex())
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestParseResponseNotJSON(t *testing.T) {
	cases := []string{
		"I could not understand that.",
		"Sure! ```json {title: Report}```",
		"```json\n[not json\n```",
	}
	for _, in := range cases {
		if _, err := parseResponse(in, emptyIndex()); !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("parseResponse(%q) err = %v, want ErrMalformedResponse", in, err)
		}
	}
}

func TestParseResponseDataObjectOrArray(t *testing.T) {
	asArray, err := parseResponse(`{"action":"create","data":[{"title":"A"},{"title":"B"}]}`, emptyIndex())
	if err != nil {
		t.Fatalf("array form: %v", err)
	}
	if len(asArray.Data) != 2 || asArray.Data[1].Title != "B" {
		t.Errorf("array data = %+v", asArray.Data)
	}

	asObject, err := parseResponse(`{"action":"create","data":{"title":"A"}}`, emptyIndex())
	if err != nil {
		t.Fatalf("object form: %v", err)
	}
	if len(asObject.Data) != 1 || asObject.Data[0].Title != "A" {
		t.Errorf("object data = %+v", asObject.Data)
	}
}

func TestParseResponseAssigneeNameFallback(t *testing.T) {
	cmd, err := parseResponse(`{"action":"create","data":{"title":"A","assignee":"Dana"}}`, emptyIndex())
	if err != nil {
		t.Fatalf("parseResponse: %v", err)
	}
	if cmd.Data[0].AssigneeName != "Dana" {
		t.Errorf("assigneeName = %q, want Dana", cmd.Data[0].AssigneeName)
	}
}

func TestParseResponseTodoIDForms(t *testing.T) {
	idx := buildShortIDIndex(seededTasks("00000000000000000000abcd", "00000000000000000000beef"))

	list, err := parseResponse(`{"action":"delete","todoIds":["TASK-abcd","TASK-beef"]}`, idx)
	if err != nil {
		t.Fatalf("list form: %v", err)
	}
	if len(list.TodoIDs) != 2 || list.TodoIDs[0] != "00000000000000000000abcd" {
		t.Errorf("list ids = %v", list.TodoIDs)
	}

	asString, err := parseResponse(`{"action":"delete","todoIds":"TASK-abcd"}`, idx)
	if err != nil {
		t.Fatalf("string form: %v", err)
	}
	if len(asString.TodoIDs) != 1 {
		t.Errorf("string ids = %v", asString.TodoIDs)
	}

	singular, err := parseResponse(`{"action":"delete","todoId":"TASK-abcd"}`, idx)
	if err != nil {
		t.Fatalf("singular form: %v", err)
	}
	if len(singular.TodoIDs) != 1 {
		t.Errorf("singular ids = %v", singular.TodoIDs)
	}
}

func TestParseResponseFailsFastOnBadID(t *testing.T) {
	idx := buildShortIDIndex(seededTasks("00000000000000000000abcd"))
	_, err := parseResponse(`{"action":"delete","todoIds":["TASK-abcd","TASK-9999"]}`, idx)
	if !errors.Is(err, ErrInvalidTaskID) {
		t.Fatalf("err = %v, want ErrInvalidTaskID", err)
	}
}

func TestCanonicalStatus(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"todo", "Todo", true},
		{"To Do", "Todo", true},
		{"in progress", "In Progress", true},
		{"IN_PROGRESS", "In Progress", true},
		{"done", "Completed", true},
		{"backlog", "BackLog", true},
		{"canceled", "Cancelled", true},
		{"archived", "", false},
	}
	for _, tc := range cases {
		got, ok := canonicalStatus(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("canonicalStatus(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCanonicalPriority(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "", true},
		{"HIGH", "High", true},
		{"med", "Medium", true},
		{"low", "Low", true},
		{"urgent", "", false},
	}
	for _, tc := range cases {
		got, ok := canonicalPriority(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("canonicalPriority(%q) = %q,%v; want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
