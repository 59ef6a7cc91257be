package main

import (
	"os"

	cmd "github.com/vera-byte/drone-console/cmd"
	vgokit "github.com/vera-byte/vgo-kit"
	"go.uber.org/zap"
)

// main 控制台主入口
func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		// 登录失败和接口失败时客户端已给出提示
		if cmd.AlreadyReported(err) {
			os.Exit(1)
		}
		vgokit.Log.Fatal("Failed to execute command", zap.Error(err))
	}
}
