package main

import (
	"os"

	"kubedump.dev/kubedump/pkg/cmds"

	"gomodules.xyz/logs"
	"k8s.io/klog/v2"
)

func main() {
	rootCmd := cmds.NewRootCmd()
	logs.Init(rootCmd, false)
	defer logs.FlushLogs()
	if err := rootCmd.Execute(); err != nil {
		klog.Errorln(err)
		klog.Flush()
		os.Exit(1)
	}
}
