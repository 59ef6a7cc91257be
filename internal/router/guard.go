package router

const (
	// LoginRoutePath 登录页
	LoginRoutePath = "/login"
	// DefaultLandingPath 登录后的默认页面
	DefaultLandingPath = "/dashboard"
	// DefaultProductName 页面标题后缀
	DefaultProductName = "无人机配送平台"
)

// Action 守卫动作
type Action int

const (
	// Allow 放行
	Allow Action = iota
	// Redirect 取消本次导航并跳转
	Redirect
)

// Decision 守卫结论
type Decision struct {
	Action Action
	Target string
}

// Guard 导航前置守卫
// 需要登录但未登录时跳转登录页；已登录访问登录页时跳转默认页；其余放行
// 参数: to 目标位置, loggedIn 是否已登录
// 返回值: Decision 守卫结论
func Guard(to Location, loggedIn bool) Decision {
	switch {
	case to.Meta.RequiresAuth && !loggedIn:
		return Decision{Action: Redirect, Target: LoginRoutePath}
	case to.Path == LoginRoutePath && loggedIn:
		return Decision{Action: Redirect, Target: DefaultLandingPath}
	default:
		return Decision{Action: Allow}
	}
}

// PageTitle 拼接页面标题
func PageTitle(title, product string) string {
	return title + " - " + product
}
