package router

import (
	"fmt"
	"strings"
)

// CatchAllPath 兜底路由路径，必须声明在最后
const CatchAllPath = "/:pathMatch(.*)*"

// Meta 路由元信息
type Meta struct {
	Title        string `json:"title,omitempty"`
	Icon         string `json:"icon,omitempty"`
	RequiresAuth bool   `json:"requiresAuth"`
	Hidden       bool   `json:"hidden,omitempty"`
}

// merge 子路由覆盖父路由的标题和图标
// 鉴权和隐藏标记按或运算继承，子路由写 RequiresAuth: false 也不会放开父路由的鉴权
// 这与按键覆盖的合并方式不同，取舍记录在 DESIGN.md 的 Meta inheritance 一节
func (m Meta) merge(child Meta) Meta {
	out := m
	if child.Title != "" {
		out.Title = child.Title
	}
	if child.Icon != "" {
		out.Icon = child.Icon
	}
	out.RequiresAuth = m.RequiresAuth || child.RequiresAuth
	out.Hidden = m.Hidden || child.Hidden
	return out
}

// Route 路由声明
type Route struct {
	Path      string
	Name      string
	Component string
	Redirect  string
	Meta      Meta
	Children  []Route
}

// Record 展开后的路由记录
type Record struct {
	FullPath  string
	Name      string
	Component string
	Redirect  string
	Meta      Meta
	Leaf      bool
	CatchAll  bool
	Depth     int
}

// Flatten 深度优先展开路由树，父节点在前
// 参数: routes 路由树
// 返回值: []Record 展开后的记录，保持声明顺序
func Flatten(routes []Route) []Record {
	var out []Record
	flatten(routes, "", Meta{}, 0, &out)
	return out
}

func flatten(routes []Route, parent string, inherited Meta, depth int, out *[]Record) {
	for _, rt := range routes {
		full := joinPath(parent, rt.Path)
		meta := inherited.merge(rt.Meta)
		*out = append(*out, Record{
			FullPath:  full,
			Name:      rt.Name,
			Component: rt.Component,
			Redirect:  rt.Redirect,
			Meta:      meta,
			Leaf:      len(rt.Children) == 0,
			CatchAll:  rt.Path == CatchAllPath,
			Depth:     depth,
		})
		flatten(rt.Children, full, meta, depth+1, out)
	}
}

// joinPath 拼接父子路径，以 / 开头的子路径视为绝对路径
func joinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return child
	}
	if parent == "" || parent == "/" {
		return "/" + child
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}

// Validate 校验路由表
// 兜底路由必须位于最后，名称和路径（不区分大小写）不能重复，叶子路由必须有标题
// 参数: routes 路由树
// 返回值: error 错误信息
func Validate(routes []Route) error {
	records := Flatten(routes)
	names := make(map[string]string)
	paths := make(map[string]bool)

	for i, rec := range records {
		if rec.CatchAll && i != len(records)-1 {
			return fmt.Errorf("catch-all route must be declared last, found at position %d", i)
		}
		if rec.Name != "" {
			if other, exists := names[rec.Name]; exists {
				return fmt.Errorf("route name %s used by both %s and %s", rec.Name, other, rec.FullPath)
			}
			names[rec.Name] = rec.FullPath
		}
		key := strings.ToLower(rec.FullPath)
		if paths[key] {
			return fmt.Errorf("route path %s declared twice", rec.FullPath)
		}
		paths[key] = true
		if rec.Leaf && rec.Meta.Title == "" {
			return fmt.Errorf("leaf route %s has no title", rec.FullPath)
		}
	}
	return nil
}

// DefaultRoutes 控制台路由表
func DefaultRoutes() []Route {
	return []Route{
		{
			Path:      LoginRoutePath,
			Name:      "Login",
			Component: "Login",
			Meta:      Meta{Title: "登录"},
		},
		{
			Path:      "/",
			Component: "Layout",
			Redirect:  DefaultLandingPath,
			Meta:      Meta{RequiresAuth: true},
			Children: []Route{
				{
					Path:      "dashboard",
					Name:      "Dashboard",
					Component: "Dashboard",
					Meta:      Meta{Title: "仪表盘", RequiresAuth: true},
				},
				{
					Path:     "order",
					Name:     "Order",
					Redirect: "/order/list",
					Meta:     Meta{Title: "订单管理", RequiresAuth: true},
					Children: []Route{
						{
							Path:      "list",
							Name:      "OrderList",
							Component: "order/OrderList",
							Meta:      Meta{Title: "订单列表", RequiresAuth: true},
						},
						{
							Path:      "statistics",
							Name:      "OrderStatistics",
							Component: "order/OrderStatistics",
							Meta:      Meta{Title: "订单统计", Icon: "DataAnalysis", RequiresAuth: true},
						},
					},
				},
				{
					Path:     "user",
					Name:     "User",
					Redirect: "/user/list",
					Meta:     Meta{Title: "用户管理", Icon: "User", RequiresAuth: true},
					Children: []Route{
						{
							Path:      "list",
							Name:      "UserList",
							Component: "user/UserList",
							Meta:      Meta{Title: "用户列表", Icon: "UserFilled", RequiresAuth: true},
						},
						{
							Path:      "pilot",
							Name:      "PilotManagement",
							Component: "user/PilotManagement",
							Meta:      Meta{Title: "飞手管理", Icon: "Avatar", RequiresAuth: true},
						},
					},
				},
				{
					Path:      "map",
					Name:      "MapMonitor",
					Component: "MapMonitor",
					Meta:      Meta{Title: "地图监控", Icon: "Location", RequiresAuth: true},
				},
				{
					Path:      "payment",
					Name:      "PaymentManagement",
					Component: "payment/PaymentManagement",
					Meta:      Meta{Title: "支付管理", Icon: "CreditCard", RequiresAuth: true},
				},
				{
					Path:     "system",
					Name:     "System",
					Redirect: "/system/config",
					Meta:     Meta{Title: "系统管理", Icon: "Setting", RequiresAuth: true},
					Children: []Route{
						{
							Path:      "config",
							Name:      "SystemConfig",
							Component: "system/SystemConfig",
							Meta:      Meta{Title: "系统配置", Icon: "Tools", RequiresAuth: true},
						},
						{
							Path:      "log",
							Name:      "OperationLog",
							Component: "system/OperationLog",
							Meta:      Meta{Title: "操作日志", Icon: "Document", RequiresAuth: true},
						},
					},
				},
			},
		},
		{
			Path:      "/404",
			Name:      "404",
			Component: "404",
			Meta:      Meta{Title: "404", Hidden: true},
		},
		{
			Path:      CatchAllPath,
			Name:      "NotFound",
			Component: "NotFound",
			Meta:      Meta{Title: "页面不存在"},
		},
	}
}
