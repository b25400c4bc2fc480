package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"

	"github.com/quotevault/backend/config"
	"github.com/quotevault/backend/internal/eventbus"
	"github.com/quotevault/backend/internal/eventsubscriber"
	"github.com/quotevault/backend/internal/handler"
	"github.com/quotevault/backend/internal/router"
	"github.com/quotevault/backend/internal/service"
)

// Version 通过 -ldflags 注入
var Version = "dev"

type app struct {
	cfg        *config.Config
	backends   *service.Backends
	quotes     *service.QuoteService
	categories *service.CategoryService
	lifecycle  *service.LifecycleService
	transfer   *service.TransferService
	console    *service.ConsoleService
}

func setup() (*app, error) {
	cfg := config.GetConfig()

	if err := os.MkdirAll(cfg.Data.Dir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	backends, err := service.SelectBackends(cfg)
	if err != nil {
		return nil, err
	}

	bus := eventbus.NewQuoteEventBus()
	eventsubscriber.RegisterLogging(bus)

	quotes := service.NewQuoteService(cfg, backends, bus)
	categories := service.NewCategoryService(cfg, backends, bus)

	return &app{
		cfg:        cfg,
		backends:   backends,
		quotes:     quotes,
		categories: categories,
		lifecycle:  service.NewLifecycleService(cfg, backends, bus),
		transfer:   service.NewTransferService(backends, quotes, categories, bus),
		console:    service.NewConsoleService(backends),
	}, nil
}

func serveAction(_ *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	klog.V(6).Infof("后端选择完成, 远程后端生效: %v", a.backends.RemoteActive())

	r := router.Setup(
		a.cfg,
		handler.NewQuoteHandler(a.quotes, a.lifecycle),
		handler.NewCategoryHandler(a.categories),
		handler.NewTransferHandler(a.transfer),
		handler.NewConsoleHandler(a.console),
	)

	log.Printf("Server starting on port %s...", a.cfg.Server.Port)
	return r.Run(":" + a.cfg.Server.Port)
}

func sweepAction(c *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	affected, err := a.lifecycle.DecaySweep(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "decayed %d quotes\n", affected)
	return nil
}

func exportAction(c *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}
	data, err := a.transfer.Export(context.Background())
	if err != nil {
		return err
	}
	if out := c.String("out"); out != "" {
		return os.WriteFile(out, data, 0644)
	}
	_, err = c.App.Writer.Write(data)
	return err
}

func importAction(c *cli.Context) error {
	a, err := setup()
	if err != nil {
		return err
	}

	var data []byte
	if c.NArg() > 0 {
		data, err = os.ReadFile(c.Args().First())
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return err
	}

	affected, err := a.transfer.Import(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d records\n", affected)
	return nil
}

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	cliApp := &cli.App{
		Name:    "quotevault",
		Usage:   "摘抄收藏服务",
		Version: Version,
		Action:  serveAction,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "启动 HTTP 服务",
				Action: serveAction,
			},
			{
				Name:   "sweep",
				Usage:  "对长期未访问的摘抄执行一轮熟悉度衰减",
				Action: sweepAction,
			},
			{
				Name:  "export",
				Usage: "导出全量快照 JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "输出文件, 默认写到标准输出"},
				},
				Action: exportAction,
			},
			{
				Name:      "import",
				Usage:     "从快照 JSON 按 id 合并导入",
				ArgsUsage: "[file]",
				Action:    importAction,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatalf("quotevault: %v", err)
	}
}
