package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/cli/commands"
	"github.com/zhouzirui/z-diet/backend/internal/cli/ui"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	// 调试日志只在 DIETCTL_LOG_LEVEL 设置时输出。
	level := os.Getenv("DIETCTL_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	if err := logger.Configure(logrus.StandardLogger(), level, "text", os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	if err := commands.Execute(); err != nil {
		if msg := err.Error(); strings.Contains(msg, "unknown command") {
			ui.PrintError("%s", msg)
			fmt.Println("\nRun 'dietctl --help' for usage.")
		}
		os.Exit(1)
	}
}
