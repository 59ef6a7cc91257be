package session_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vera-byte/drone-console/internal/notify"
	"github.com/vera-byte/drone-console/internal/session"
	"github.com/vera-byte/drone-console/internal/token"
	"github.com/vera-byte/drone-console/pkg/client"
	"github.com/vera-byte/drone-console/pkg/model"
)

var errRejected = errors.New("invalid username or password")

// fakeAPI 可控的用户接口
type fakeAPI struct {
	token    string
	loginErr error
	users    map[int64]*model.User
	fetchErr error
	logins   int
}

func (f *fakeAPI) Login(_ context.Context, _ model.LoginRequest) (string, error) {
	f.logins++
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAPI) GetUserInfo(_ context.Context, id int64) (*model.User, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.users[id], nil
}

func (f *fakeAPI) Health(context.Context) (string, error) {
	return "ok", nil
}

func TestNewRestoresPersistedToken(t *testing.T) {
	s := session.New(context.Background(), &fakeAPI{}, token.NewMemoryStore("persisted"), nil, nil)

	if !s.IsLoggedIn() || s.Token() != "persisted" {
		t.Fatalf("expected restored session, token=%q", s.Token())
	}
	if s.UserInfo() != nil {
		t.Fatal("user info is never persisted")
	}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewMemoryStore("")
	notes := &notify.Recorder{}
	s := session.New(ctx, &fakeAPI{token: "new-token"}, tokens, notes, nil)

	res := s.Login(ctx, model.LoginRequest{Username: "admin", Password: "admin123"})
	if !res.OK() || res.Value != "new-token" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !s.IsLoggedIn() || s.Token() != "new-token" {
		t.Fatalf("token = %q", s.Token())
	}
	if persisted, _ := tokens.Load(ctx); persisted != "new-token" {
		t.Fatalf("persisted token = %q", persisted)
	}
	if got := notes.Successes(); len(got) != 1 || got[0] != session.MsgLoginSucceeded {
		t.Fatalf("success notifications = %q", got)
	}
}

func TestLoginFailureKeepsLoggedOut(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewMemoryStore("")
	notes := &notify.Recorder{}
	s := session.New(ctx, &fakeAPI{loginErr: errRejected}, tokens, notes, nil)

	res := s.Login(ctx, model.LoginRequest{Username: "admin", Password: "wrong"})
	if res.OK() || !errors.Is(res.Err, errRejected) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.IsLoggedIn() {
		t.Fatal("failed login must not log in")
	}
	if persisted, _ := tokens.Load(ctx); persisted != "" {
		t.Fatalf("nothing should be persisted, got %q", persisted)
	}
	if len(notes.Successes()) != 0 || len(notes.Errors()) != 0 {
		t.Fatalf("session must not notify on failure: %s", notes)
	}
}

func TestLoginEmptyTokenIsFailure(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewMemoryStore("")
	notes := &notify.Recorder{}
	s := session.New(ctx, &fakeAPI{token: ""}, tokens, notes, nil)

	res := s.Login(ctx, model.LoginRequest{Username: "admin", Password: "admin123"})
	if res.OK() || !errors.Is(res.Err, session.ErrEmptyToken) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.IsLoggedIn() {
		t.Fatal("empty token must not log in")
	}
	if persisted, _ := tokens.Load(ctx); persisted != "" {
		t.Fatalf("nothing should be persisted, got %q", persisted)
	}
	if len(notes.Successes()) != 0 {
		t.Fatalf("unexpected success notification: %s", notes)
	}
	if errs := notes.Errors(); len(errs) != 1 || errs[0] != session.MsgEmptyToken {
		t.Fatalf("error notifications = %q", errs)
	}
}

func TestLoginWithoutTokenData(t *testing.T) {
	bodies := map[string]string{
		"null data":    `{"code":200,"message":"ok","data":null}`,
		"empty string": `{"code":200,"message":"ok","data":""}`,
		"missing data": `{"code":200,"message":"ok"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				io.WriteString(w, body)
			}))
			defer srv.Close()

			ctx := context.Background()
			tokens := token.NewMemoryStore("")
			notes := &notify.Recorder{}
			api := client.NewUserAPI(client.NewHTTPClient(client.Options{
				BaseURL:  srv.URL,
				Tokens:   tokens,
				Notifier: notes,
			}))
			s := session.New(ctx, api, tokens, notes, nil)

			res := s.Login(ctx, model.LoginRequest{Username: "admin", Password: "admin123"})
			if res.OK() || s.IsLoggedIn() {
				t.Fatalf("ok=%v loggedIn=%v", res.OK(), s.IsLoggedIn())
			}
			if persisted, _ := tokens.Load(ctx); persisted != "" {
				t.Fatalf("persisted token = %q", persisted)
			}
			if len(notes.Successes()) != 0 || len(notes.Errors()) != 1 {
				t.Fatalf("notifications: %s", notes)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewMemoryStore("t")
	notes := &notify.Recorder{}
	api := &fakeAPI{users: map[int64]*model.User{1: {ID: 1, Username: "admin"}}}
	s := session.New(ctx, api, tokens, notes, nil)
	s.FetchUserInfo(ctx, 1)

	s.Logout(ctx)
	if s.IsLoggedIn() || s.Token() != "" || s.UserInfo() != nil {
		t.Fatal("logout must clear token and user info")
	}
	if persisted, _ := tokens.Load(ctx); persisted != "" {
		t.Fatalf("persisted token = %q", persisted)
	}

	// 未登录时再次退出同样成功
	s.Logout(ctx)
	if got := notes.Successes(); len(got) != 2 || got[1] != session.MsgLoggedOut {
		t.Fatalf("success notifications = %q", got)
	}
}

func TestFetchUserInfo(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{users: map[int64]*model.User{7: {ID: 7, Username: "pilot01", UserType: model.UserTypePilot}}}
	s := session.New(ctx, api, token.NewMemoryStore("t"), nil, nil)

	res := s.FetchUserInfo(ctx, 7)
	if !res.OK() || res.Value.Username != "pilot01" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if s.UserInfo() == nil || s.UserInfo().ID != 7 {
		t.Fatalf("user info not cached: %+v", s.UserInfo())
	}

	api.fetchErr = errors.New("internal server error")
	failed := s.FetchUserInfo(ctx, 7)
	if failed.OK() {
		t.Fatal("expected failure")
	}
	if s.UserInfo() == nil || s.UserInfo().Username != "pilot01" {
		t.Fatal("failed fetch must keep previous user info")
	}

	s.ClearUserInfo()
	if s.UserInfo() != nil || !s.IsLoggedIn() {
		t.Fatal("clearing user info must not affect login state")
	}
}

func TestReloadDiscardsMemoryState(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewMemoryStore("")
	s := session.New(ctx, &fakeAPI{token: "fresh"}, tokens, nil, nil)
	s.Login(ctx, model.LoginRequest{Username: "admin", Password: "admin123"})

	// 模拟401后令牌被客户端删除
	if err := tokens.Remove(ctx); err != nil {
		t.Fatal(err)
	}
	s.Reload(ctx)
	if s.IsLoggedIn() {
		t.Fatal("reload must derive state from persisted token")
	}
}

func TestParseClaims(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"userId":   42,
		"username": "pilot01",
		"userType": 1,
		"exp":      expires.Unix(),
	}).SignedString([]byte("unknown-to-the-client"))
	if err != nil {
		t.Fatal(err)
	}

	claims, err := session.ParseClaims(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "pilot01" || claims.UserType != model.UserTypePilot {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Expired(time.Now()) {
		t.Fatal("token should not be expired yet")
	}
	if !claims.Expired(expires.Add(time.Second)) {
		t.Fatal("token should be expired after exp")
	}

	if _, err := session.ParseClaims(""); !errors.Is(err, session.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if _, err := session.ParseClaims("not-a-jwt"); err == nil {
		t.Fatal("expected parse error")
	}
}
