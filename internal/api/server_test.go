package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/testutil"
	"taskboard/pkg/activity"
	"taskboard/pkg/agent"
	"taskboard/pkg/task"
	"taskboard/pkg/user"
)

// testServer wires a Server over in-memory fakes. The completer's
// canned response is swappable per request.
type testServer struct {
	*Server
	tasks *testutil.TaskStore
	users *testutil.UserStore
	llm   *testutil.Completer
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tasks := testutil.NewTaskStore()
	users := testutil.NewUserStore(
		user.User{ID: "u1", Name: "Ann", Email: "ann@x.com"},
		user.User{ID: "u9", Name: "Dana Lee", Email: "dana@x.com"},
	)
	llm := &testutil.Completer{}
	feed := activity.NewBus(testutil.NewActivityStore())
	auth := NewAuth(users, "test-secret")
	ag := agent.New(tasks, users, llm, feed, nil)

	token, err := auth.Token(&user.User{ID: "u1", Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)

	return &testServer{
		Server: New(tasks, users, ag, feed, auth),
		tasks:  tasks,
		users:  users,
		llm:    llm,
		token:  token,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestSignupAndSignin(t *testing.T) {
	ts := newTestServer(t)

	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"name":"Carl","email":"carl@x.com","password":"hunter22"}`)
	ts.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/signup", body))
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var signupResp struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signupResp))
	assert.NotEmpty(t, signupResp.Token)
	assert.Equal(t, "Carl", signupResp.User.Name)

	// Same email again conflicts.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"name":"Carl","email":"carl@x.com","password":"hunter22"}`)
	ts.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/signup", body))
	assert.Equal(t, 409, rec.Code)

	// Signin with the right password succeeds.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"email":"carl@x.com","password":"hunter22"}`)
	ts.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/signin", body))
	assert.Equal(t, 200, rec.Code, rec.Body.String())

	// Wrong password is rejected without detail.
	rec = httptest.NewRecorder()
	body = bytes.NewBufferString(`{"email":"carl@x.com","password":"wrong"}`)
	ts.ServeHTTP(rec, httptest.NewRequest("POST", "/api/auth/signin", body))
	assert.Equal(t, 401, rec.Code)
}

func TestTaskCRUDOwnership(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, "POST", "/api/tasks", map[string]any{
		"title":    "Write report",
		"status":   "Todo",
		"priority": "High",
		"assignee": map[string]string{"userId": "u9", "name": "Dana Lee", "email": "dana@x.com"},
	})
	require.Equal(t, 201, rec.Code, rec.Body.String())

	var created task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "u1", created.CreatedBy.UserID)

	// Another user's task reads as not found.
	other := task.Task{ID: "00000000000000000000ffff", Title: "Not yours",
		CreatedBy: task.UserRef{UserID: "u2"}, Assignee: task.UserRef{UserID: "u2"}}
	ts.tasks.Put(&other)
	rec = ts.request(t, "GET", "/api/tasks/"+other.ID, nil)
	assert.Equal(t, 404, rec.Code)

	// Own task round-trips.
	rec = ts.request(t, "GET", "/api/tasks/"+created.ID, nil)
	require.Equal(t, 200, rec.Code)

	// Partial update keeps untouched fields.
	rec = ts.request(t, "PUT", "/api/tasks/"+created.ID, map[string]any{"status": "Completed"})
	require.Equal(t, 200, rec.Code, rec.Body.String())
	var updated task.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Completed", updated.Status)
	assert.Equal(t, "Write report", updated.Title)

	// Delete, then the task is gone.
	rec = ts.request(t, "DELETE", "/api/tasks/"+created.ID, nil)
	require.Equal(t, 200, rec.Code)
	rec = ts.request(t, "GET", "/api/tasks/"+created.ID, nil)
	assert.Equal(t, 404, rec.Code)
}

func TestTaskCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(t, "POST", "/api/tasks", map[string]any{"title": ""})
	assert.Equal(t, 400, rec.Code)

	rec = ts.request(t, "POST", "/api/tasks", map[string]any{
		"title":    "T",
		"status":   "NotAStatus",
		"assignee": map[string]string{"userId": "u9"},
	})
	assert.Equal(t, 400, rec.Code)
}

func TestCommandEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.Response = `{"action":"create","data":[{"title":"Write report","description":"Q3","status":"Todo","priority":"High","dueDate":"2024-09-01","dueTime":"05:00 PM","assigneeName":"Dana"}]}`

	rec := ts.request(t, "POST", "/api/ai/command", map[string]string{"command": "create a report task for dana"})
	require.Equal(t, 200, rec.Code, rec.Body.String())

	var result agent.CommandResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.Task)
	assert.Equal(t, "u9", result.Task.Assignee.UserID)
	assert.Equal(t, "u1", result.Task.CreatedBy.UserID)
}

func TestCommandEndpointErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name       string
		response   string
		wantStatus int
	}{
		{"malformed model output", "Sure! ```json {title: Report}```", 422},
		{"missing create fields", `{"action":"create","data":[{"title":"T"}]}`, 422},
		{"unknown short id", `{"action":"delete","todoIds":["TASK-9999"]}`, 404},
		{"unknown assignee", `{"action":"create","data":[{"title":"T","description":"D","status":"Todo","priority":"Low","dueDate":"2024-10-01","dueTime":"09:00 AM","assigneeName":"Zed"}]}`, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts.llm.Response = tc.response
			rec := ts.request(t, "POST", "/api/ai/command", map[string]string{"command": "do something"})
			assert.Equal(t, tc.wantStatus, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, 0, ts.tasks.Len(), "failed commands must not write")
}

func TestCommandRequiresBody(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, "POST", "/api/ai/command", map[string]string{})
	assert.Equal(t, 400, rec.Code)
}

func TestCommandRequiresAuth(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	body := bytes.NewBufferString(`{"command":"list my tasks"}`)
	ts.ServeHTTP(rec, httptest.NewRequest("POST", "/api/ai/command", body))
	assert.Equal(t, 401, rec.Code)
}

func TestUserListHidesPasswordHash(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(t, "GET", "/api/users", nil)
	require.Equal(t, 200, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "dana@x.com")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, 200, rec.Code)
}
