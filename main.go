package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/NikhilNandyala/azure-daily-blog/internal/auth"
	"github.com/NikhilNandyala/azure-daily-blog/internal/cache"
	"github.com/NikhilNandyala/azure-daily-blog/internal/cms"
	"github.com/NikhilNandyala/azure-daily-blog/internal/config"
	"github.com/NikhilNandyala/azure-daily-blog/internal/content"
	"github.com/NikhilNandyala/azure-daily-blog/internal/draft"
	"github.com/NikhilNandyala/azure-daily-blog/internal/logging"
	"github.com/NikhilNandyala/azure-daily-blog/internal/revalidate"
	"github.com/NikhilNandyala/azure-daily-blog/internal/server"
	"github.com/NikhilNandyala/azure-daily-blog/internal/server/routes"
	"github.com/NikhilNandyala/azure-daily-blog/internal/version"
	"github.com/NikhilNandyala/azure-daily-blog/internal/views"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

const configEnv = "BLOG_CONFIG"

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute 构建命令树并返回退出码；参数错误返回 2。
func execute(args []string) int {
	code := 0
	root := newRootCommand(&code)
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stdErr, err.Error())
		return 2
	}
	return code
}

func newRootCommand(code *int) *cobra.Command {
	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	root := &cobra.Command{
		Use:           "azure-daily-blog",
		Short:         "Azure Daily Blog 站点服务",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			*code = run(cliOptions{
				configPath:  resolveConfigPath(configFlag),
				checkOnly:   checkOnly,
				showVersion: showVer,
			})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 "+configEnv+" 覆盖）")
	root.Flags().BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	root.Flags().BoolVar(&showVer, "version", false, "显示版本信息")

	root.AddCommand(newPostCommand(&configFlag, code))
	root.AddCommand(newTokenCommand(&configFlag, code))
	return root
}

// resolveConfigPath 按 flag > 环境变量 > 默认值 的顺序确定配置路径。
func resolveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(configEnv); env != "" {
		return env
	}
	return "config.toml"
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer logging.Close(logger)

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["cms_configured"] = cfg.CMS.Configured()
		fields["secrets"] = cfg.SecretModes()
		fields["views_backend"] = cfg.Views.Backend
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 磁盘缓存 → CMS 客户端 → 内容仓库 → 阅读数后端 → Fiber server。
	app, cleanup, err := buildApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化服务失败: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := config.Watch(opts.configPath, func(next *config.Config) {
		if err := logging.ApplyLevel(logger, next.Global.LogLevel); err != nil {
			logger.WithError(err).Warn("日志级别未更新")
			return
		}
		logger.WithFields(logging.BaseFields("config_reload", opts.configPath)).
			Info("配置已重新加载，除日志级别外的变更需重启生效")
	}, func(err error) {
		logger.WithFields(logging.BaseFields("config_reload", opts.configPath)).WithError(err).Warn("配置重新加载失败")
	}); err != nil {
		logger.WithError(err).Warn("配置热加载不可用")
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["cms_configured"] = cfg.CMS.Configured()
	fields["draft_configured"] = cfg.DraftConfigured()
	fields["secrets"] = cfg.SecretModes()
	fields["views_backend"] = cfg.Views.Backend
	fields["cache_enabled"] = cfg.Cache.Enabled
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := serve(app, cfg.Global.ListenPort, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// buildRepository 组装 CMS Source 与内容仓库，缓存关闭时 store 为 nil。
func buildRepository(cfg *config.Config, logger *logrus.Logger) (*cms.Source, *content.Repository, error) {
	source, err := cms.NewSource(cfg, cms.NewHTTPClient(cfg.CMS.Timeout.DurationValue()))
	if err != nil {
		return nil, nil, fmt.Errorf("创建 CMS 客户端失败: %w", err)
	}

	var store cache.Store
	if cfg.Cache.Enabled {
		if store, err = cache.NewStore(cfg.Global.StoragePath); err != nil {
			return nil, nil, fmt.Errorf("初始化缓存目录失败: %w", err)
		}
	}

	repo := content.NewRepository(content.Options{
		Source:    source,
		Store:     store,
		ListTTL:   cfg.EffectiveTTL(false),
		DetailTTL: cfg.EffectiveTTL(true),
		Logger:    logger,
		// 重试会叠加多次超时，给共享查询留出余量。
		FetchTimeout: cfg.CMS.Timeout.DurationValue() * time.Duration(cfg.CMS.MaxRetries+1),
	})
	return source, repo, nil
}

// buildViews 按配置选择阅读数后端，返回的 closer 在退出时调用。
func buildViews(cfg *config.Config, source *cms.Source, repo *content.Repository) (views.Counter, func(), error) {
	switch cfg.Views.Backend {
	case config.ViewsBackendSQLite:
		counter, err := views.OpenSQLite(cfg.Views.SQLitePath, repo.PostExists)
		if err != nil {
			return nil, nil, err
		}
		return counter, func() { _ = counter.Close() }, nil
	default:
		return views.NewCMSCounter(source), func() {}, nil
	}
}

func buildApp(cfg *config.Config, logger *logrus.Logger) (*fiber.App, func(), error) {
	source, repo, err := buildRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	counter, closeViews, err := buildViews(cfg, source, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化阅读数后端失败: %w", err)
	}

	session := auth.NewManager(auth.ManagerOptions{
		Secret:   cfg.Secrets.SessionSecret,
		Cookie:   cfg.Auth.SessionCookie,
		LoginURL: cfg.Auth.LoginURL,
		Gate:     cfg.Auth.MembersGate,
	})
	mode := draft.New(draft.Options{
		Secret:    cfg.Secrets.DraftSecret,
		Cookie:    cfg.Auth.DraftCookie,
		TTL:       cfg.Auth.DraftTTL.DurationValue(),
		Available: source.DraftConfigured(),
		Secure:    strings.HasPrefix(cfg.Site.URL, "https://"),
		Logger:    logger,
	})

	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Session:    session,
		Draft:      mode,
		SiteTitle:  cfg.Site.Title,
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		closeViews()
		return nil, nil, err
	}
	if err := routes.Register(app, routes.Deps{
		Site:       cfg.Site,
		Content:    repo,
		Session:    session,
		Draft:      mode,
		Views:      counter,
		Revalidate: revalidate.NewHandler(cfg.Secrets.RevalidateSecret, repo, logger),
		Logger:     logger,
	}); err != nil {
		closeViews()
		return nil, nil, err
	}
	return app, closeViews, nil
}

// serve 监听端口，收到 SIGINT/SIGTERM 后在超时内优雅关闭。
func serve(app *fiber.App, port int, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"action": "listen",
			"port":   port,
		}).Info("Fiber 服务启动")
		errCh <- app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.WithField("action", "shutdown").Info("收到退出信号，开始关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-errCh
}
