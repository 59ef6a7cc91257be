package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vera-byte/drone-console/internal/config"
	"github.com/vera-byte/drone-console/internal/console"
	"github.com/vera-byte/drone-console/internal/logger"
	"github.com/vera-byte/drone-console/internal/mockapi"
	"github.com/vera-byte/drone-console/internal/notify"
	"github.com/vera-byte/drone-console/internal/router"
	"github.com/vera-byte/drone-console/pkg/client"
	"github.com/vera-byte/drone-console/pkg/model"
)

// 全局参数
var (
	configFile string
	baseURL    string
	ephemeral  bool
)

// ErrLoginFailed 登录失败，提示已输出
var ErrLoginFailed = errors.New("login failed")

// AlreadyReported 错误是否已经通过提示通道展示给用户
// 接口失败在客户端内部已经提示过一次
func AlreadyReported(err error) bool {
	var apiErr *client.Error
	return errors.Is(err, ErrLoginFailed) || errors.As(err, &apiErr)
}

// RootCmd 根命令
var RootCmd = &cobra.Command{
	Use:           "drone-console",
	Short:         "Drone delivery admin console",
	Long:          `drone-console is the command line admin console of the drone delivery platform.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and persist the session token",
	RunE:  withConsole(runLogin),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the session token",
	RunE:  withConsole(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE:  withConsole(runWhoami),
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the user service health",
	RunE:  withConsole(runHealth),
}

var openCmd = &cobra.Command{
	Use:   "open <path>",
	Short: "Navigate to a console page through the route guard",
	Args:  cobra.ExactArgs(1),
	RunE:  withConsole(runOpen),
}

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the console route table",
	RunE:  withConsole(runRoutes),
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List users page by page",
	RunE:  withConsole(runUsers),
}

var mockServerCmd = &cobra.Command{
	Use:   "mock-server",
	Short: "Start an in-memory user service for development",
	RunE:  runMockServer,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "API base URL, overrides api.base_url")
	RootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep the token in memory only")

	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (or CONSOLE_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("username")

	whoamiCmd.Flags().Int64("id", 0, "user id, defaults to the id in the session token")

	usersCmd.Flags().Int("current", 1, "page number")
	usersCmd.Flags().Int("size", 10, "page size")
	usersCmd.Flags().String("username", "", "filter by username")

	mockServerCmd.Flags().String("port", "", "listen port, overrides mock.port")

	// 添加子命令
	RootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, healthCmd, openCmd, routesCmd, usersCmd, mockServerCmd)
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if ephemeral {
		cfg.Token.Store = "memory"
	}
	return cfg, nil
}

// withConsole 为子命令组装控制台上下文
func withConsole(run func(ctx context.Context, cmd *cobra.Command, c *console.Console, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log, err := logger.New(cfg.Log)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		c, err := console.New(ctx, cfg, log, notify.ForOutput(cmd.ErrOrStderr(), log))
		if err != nil {
			return err
		}
		defer c.Close()

		return run(ctx, cmd, c, args)
	}
}

// runLogin 登录并进入默认页面
func runLogin(ctx context.Context, cmd *cobra.Command, c *console.Console, _ []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("CONSOLE_PASSWORD")
	}

	res := c.Session.Login(ctx, model.LoginRequest{Username: username, Password: password})
	if !res.OK() {
		return ErrLoginFailed
	}

	loc, err := c.Router.Navigate(router.LoginRoutePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", c.Router.Title(), loc.Path)
	return nil
}

// runLogout 退出登录
func runLogout(ctx context.Context, _ *cobra.Command, c *console.Console, _ []string) error {
	c.Session.Logout(ctx)
	return nil
}

// runWhoami 展示当前用户信息
func runWhoami(ctx context.Context, cmd *cobra.Command, c *console.Console, _ []string) error {
	id, _ := cmd.Flags().GetInt64("id")
	if id == 0 {
		claims, err := c.Session.Claims()
		if err != nil {
			return err
		}
		if claims.Expired(time.Now()) {
			c.Logger.Warn("Session token has expired", zap.Time("expires_at", claims.ExpiresAt.Time))
		}
		id = claims.UserID
	}

	res := c.Session.FetchUserInfo(ctx, id)
	if !res.OK() {
		return res.Err
	}
	if res.Value == nil {
		return fmt.Errorf("user %d not found", id)
	}
	printUserTable(cmd.OutOrStdout(), []model.User{*res.Value})
	return nil
}

// runHealth 健康检查
func runHealth(ctx context.Context, cmd *cobra.Command, c *console.Console, _ []string) error {
	status, err := c.Users.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), status)
	return nil
}

// runOpen 经过守卫导航到指定页面
func runOpen(_ context.Context, cmd *cobra.Command, c *console.Console, args []string) error {
	loc, err := c.Router.Navigate(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "title:     %s\n", c.Router.Title())
	fmt.Fprintf(out, "path:      %s\n", loc.Path)
	fmt.Fprintf(out, "component: %s\n", loc.Record.Component)
	if loc.Path != args[0] {
		fmt.Fprintf(out, "requested: %s\n", args[0])
	}
	return nil
}

// runRoutes 输出路由表
func runRoutes(_ context.Context, cmd *cobra.Command, c *console.Console, _ []string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Path", "Name", "Title", "Auth", "Redirect"})

	for _, rec := range c.Router.Records() {
		if rec.Meta.Hidden {
			continue
		}
		table.Append([]string{
			rec.FullPath,
			rec.Name,
			rec.Meta.Title,
			strconv.FormatBool(rec.Meta.RequiresAuth),
			rec.Redirect,
		})
	}

	configureTable(table)
	table.Render()
	return nil
}

// runUsers 分页列出用户
func runUsers(ctx context.Context, cmd *cobra.Command, c *console.Console, _ []string) error {
	current, _ := cmd.Flags().GetInt("current")
	size, _ := cmd.Flags().GetInt("size")
	username, _ := cmd.Flags().GetString("username")

	page, err := c.Users.PageUsers(ctx, model.UserQuery{Current: current, Size: size, Username: username})
	if err != nil {
		return err
	}
	if page == nil {
		page = &model.Page[model.User]{}
	}
	printUserTable(cmd.OutOrStdout(), page.Records)
	fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d users\n", page.Current, page.Pages, page.Total)
	return nil
}

// runMockServer 启动模拟后端，收到中断信号后退出
func runMockServer(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Sync()

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = cfg.Mock.Port
	}

	srv, err := mockapi.New(mockapi.Options{
		JWTSecret:     cfg.Mock.JWTSecret,
		JWTExpiration: time.Duration(cfg.Mock.JWTExpiration) * time.Second,
		RateLimit:     cfg.Mock.RateLimit,
	}, log.Named("mockapi"))
	if err != nil {
		return err
	}

	// 等待中断信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, ":"+port)
}

// printUserTable 以表格输出用户
func printUserTable(w io.Writer, users []model.User) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Username", "Nickname", "Type", "Status", "Last Login"})
	for _, u := range users {
		status := "disabled"
		if u.Enabled() {
			status = "enabled"
		}
		table.Append([]string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.DisplayName(),
			u.UserType.String(),
			status,
			u.LastLoginTime,
		})
	}
	configureTable(table)
	table.Render()
}

// configureTable 统一表格样式
func configureTable(table *tablewriter.Table) {
	table.SetBorder(false)
	table.SetCenterSeparator("|")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
}
