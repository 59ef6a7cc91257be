package router

import (
	"errors"
	"strings"
	"testing"
)

type fakeSession struct {
	loggedIn bool
}

func (f *fakeSession) IsLoggedIn() bool {
	return f.loggedIn
}

func newTestRouter(t *testing.T, loggedIn bool) (*Router, *fakeSession) {
	t.Helper()
	s := &fakeSession{loggedIn: loggedIn}
	r, err := New(DefaultRoutes(), s)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return r, s
}

func TestGuard(t *testing.T) {
	protected := Location{Path: "/order/list", Meta: Meta{Title: "订单列表", RequiresAuth: true}}
	login := Location{Path: LoginRoutePath, Meta: Meta{Title: "登录"}}
	public := Location{Path: "/404", Meta: Meta{Title: "404"}}

	cases := []struct {
		name     string
		to       Location
		loggedIn bool
		want     Decision
	}{
		{"protected while logged out", protected, false, Decision{Action: Redirect, Target: LoginRoutePath}},
		{"protected while logged in", protected, true, Decision{Action: Allow}},
		{"login while logged in", login, true, Decision{Action: Redirect, Target: DefaultLandingPath}},
		{"login while logged out", login, false, Decision{Action: Allow}},
		{"public while logged out", public, false, Decision{Action: Allow}},
		{"public while logged in", public, true, Decision{Action: Allow}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Guard(tc.to, tc.loggedIn); got != tc.want {
				t.Fatalf("Guard() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestFlattenInheritsMeta(t *testing.T) {
	records := Flatten(DefaultRoutes())

	byPath := make(map[string]Record)
	for _, rec := range records {
		byPath[rec.FullPath] = rec
	}

	list, ok := byPath["/order/list"]
	if !ok {
		t.Fatal("/order/list not flattened")
	}
	if !list.Meta.RequiresAuth || list.Meta.Title != "订单列表" || !list.Leaf || list.Depth != 2 {
		t.Fatalf("unexpected record: %+v", list)
	}
	if icon := byPath["/user/list"].Meta.Icon; icon != "UserFilled" {
		t.Fatalf("child icon should override parent, got %q", icon)
	}
	if icon := byPath["/order/list"].Meta.Icon; icon != "" {
		t.Fatalf("unexpected inherited icon %q", icon)
	}
	if last := records[len(records)-1]; !last.CatchAll {
		t.Fatalf("catch-all should be last, got %s", last.FullPath)
	}
}

func TestMetaMergeCannotDropAuth(t *testing.T) {
	records := Flatten([]Route{{
		Path: "/admin",
		Meta: Meta{RequiresAuth: true, Hidden: true},
		Children: []Route{
			{Path: "open", Name: "Open", Meta: Meta{Title: "open", RequiresAuth: false}},
		},
	}})

	child := records[1]
	if child.FullPath != "/admin/open" {
		t.Fatalf("full path = %s", child.FullPath)
	}
	if !child.Meta.RequiresAuth || !child.Meta.Hidden {
		t.Fatalf("auth and hidden flags must be inherited: %+v", child.Meta)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		routes []Route
		want   string
	}{
		{
			"catch-all not last",
			[]Route{
				{Path: CatchAllPath, Name: "NotFound", Meta: Meta{Title: "nf"}},
				{Path: "/login", Name: "Login", Meta: Meta{Title: "登录"}},
			},
			"declared last",
		},
		{
			"duplicate name",
			[]Route{
				{Path: "/a", Name: "Same", Meta: Meta{Title: "a"}},
				{Path: "/b", Name: "Same", Meta: Meta{Title: "b"}},
			},
			"route name Same",
		},
		{
			"duplicate path",
			[]Route{
				{Path: "/a", Name: "A", Meta: Meta{Title: "a"}},
				{Path: "/a", Name: "B", Meta: Meta{Title: "b"}},
			},
			"declared twice",
		},
		{
			"duplicate path differing in case",
			[]Route{
				{Path: "/a", Name: "A", Meta: Meta{Title: "a"}},
				{Path: "/A", Name: "B", Meta: Meta{Title: "b"}},
			},
			"declared twice",
		},
		{
			"leaf without title",
			[]Route{{Path: "/a", Name: "A"}},
			"has no title",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.routes)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tc.want)
			}
		})
	}

	if err := Validate(DefaultRoutes()); err != nil {
		t.Fatalf("default routes should be valid: %v", err)
	}
}

func TestResolve(t *testing.T) {
	r, _ := newTestRouter(t, false)

	cases := []struct {
		path     string
		wantPath string
		wantName string
		from     string
	}{
		{"/", "/dashboard", "Dashboard", "/"},
		{"/order", "/order/list", "OrderList", "/order"},
		{"/system/", "/system/config", "SystemConfig", "/system"},
		{"/user/pilot?tab=active", "/user/pilot", "PilotManagement", ""},
		{"map", "/map", "MapMonitor", ""},
		{"/some/random/path", "/some/random/path", "NotFound", ""},
		{"/Dashboard", "/dashboard", "Dashboard", ""},
		{"/USER/Pilot/", "/user/pilot", "PilotManagement", ""},
		{"/Order", "/order/list", "OrderList", "/order"},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			loc, err := r.Resolve(tc.path)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if loc.Path != tc.wantPath || loc.Name != tc.wantName || loc.RedirectedFrom != tc.from {
				t.Fatalf("got path=%s name=%s from=%s", loc.Path, loc.Name, loc.RedirectedFrom)
			}
		})
	}
}

func TestNavigateLoggedOut(t *testing.T) {
	r, _ := newTestRouter(t, false)

	loc, err := r.Navigate("/order/list")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != LoginRoutePath {
		t.Fatalf("expected redirect to login, got %s", loc.Path)
	}
	if r.Title() != "登录 - "+DefaultProductName {
		t.Fatalf("title = %q", r.Title())
	}

	loc, err = r.Navigate("/some/random/path")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Name != "NotFound" {
		t.Fatalf("unknown path should render NotFound, got %s", loc.Name)
	}

	if h := r.History(); len(h) != 2 || h[0] != LoginRoutePath {
		t.Fatalf("history = %v", h)
	}
}

func TestNavigateLoggedIn(t *testing.T) {
	r, _ := newTestRouter(t, true)

	loc, err := r.Navigate(LoginRoutePath)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != DefaultLandingPath {
		t.Fatalf("logged in user visiting login should land on dashboard, got %s", loc.Path)
	}

	loc, err = r.Navigate("/")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != "/dashboard" || r.Title() != "仪表盘 - "+DefaultProductName {
		t.Fatalf("path=%s title=%s", loc.Path, r.Title())
	}

	loc, err = r.Navigate("/payment")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Record.Component != "payment/PaymentManagement" {
		t.Fatalf("component = %s", loc.Record.Component)
	}
	if r.Current().Path != "/payment" {
		t.Fatalf("current = %s", r.Current().Path)
	}
}

func TestNavigateIgnoresCase(t *testing.T) {
	r, _ := newTestRouter(t, true)

	loc, err := r.Navigate("/LOGIN")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != DefaultLandingPath {
		t.Fatalf("guard should see /login regardless of case, got %s", loc.Path)
	}

	r2, _ := newTestRouter(t, false)
	loc, err = r2.Navigate("/Map")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Path != LoginRoutePath {
		t.Fatalf("protected route reached through a different case, got %s", loc.Path)
	}
}

func TestProductNameOption(t *testing.T) {
	r, err := New(DefaultRoutes(), &fakeSession{}, WithProductName("Ops"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Navigate("/login"); err != nil {
		t.Fatal(err)
	}
	if r.Title() != "登录 - Ops" {
		t.Fatalf("title = %q", r.Title())
	}
}

func TestHardRedirectBypassesGuard(t *testing.T) {
	r, s := newTestRouter(t, true)

	reloads := 0
	r.OnReload(func() {
		reloads++
		s.loggedIn = false
	})

	if _, err := r.Navigate("/dashboard"); err != nil {
		t.Fatal(err)
	}

	r.HardRedirect(LoginRoutePath)
	if reloads != 1 {
		t.Fatalf("reload hooks ran %d times", reloads)
	}
	if r.Current().Path != LoginRoutePath {
		t.Fatalf("current = %s", r.Current().Path)
	}
	if r.Title() != "登录 - "+DefaultProductName {
		t.Fatalf("title = %q", r.Title())
	}

	// 即使仍处于登录状态，强制跳转也不会被守卫改写
	r2, _ := newTestRouter(t, true)
	r2.HardRedirect(LoginRoutePath)
	if r2.Current().Path != LoginRoutePath {
		t.Fatalf("hard redirect must not run the guard, got %s", r2.Current().Path)
	}
}

func TestRedirectLoop(t *testing.T) {
	r, err := New([]Route{
		{Path: "/a", Name: "A", Redirect: "/b", Meta: Meta{Title: "a"}},
		{Path: "/b", Name: "B", Redirect: "/a", Meta: Meta{Title: "b"}},
	}, &fakeSession{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Navigate("/a"); !errors.Is(err, ErrTooManyRedirects) {
		t.Fatalf("expected ErrTooManyRedirects, got %v", err)
	}
}

func TestNoCatchAll(t *testing.T) {
	r, err := New([]Route{{Path: "/a", Name: "A", Meta: Meta{Title: "a"}}}, &fakeSession{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Resolve("/missing"); err == nil {
		t.Fatal("expected an error without a catch-all route")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":               "/",
		"/":              "/",
		"dashboard":      "/dashboard",
		"/order/list/":   "/order/list",
		"/map#anchor":    "/map",
		"/user/list?x=1": "/user/list",
		"///":            "/",
	}
	for in, want := range cases {
		if got := normalize(in); got != want {
			t.Errorf("normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
