package cmds

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"kubedump.dev/kubedump/pkg/dump"

	"github.com/spf13/cobra"
	"gomodules.xyz/flags"
	v "gomodules.xyz/x/version"
	"kmodules.xyz/client-go/tools/clientcmd"
)

func NewRootCmd() *cobra.Command {
	var (
		opt            dump.Options
		kubeconfigPath string
		kubeContext    string
	)
	rootCmd := &cobra.Command{
		Use:               "kubedump",
		Short:             "Dump every object in a Kubernetes cluster to a directory tree",
		Long:              "kubedump discovers every resource kind the API server exposes, lists all live objects of each kind, and writes one YAML file per object under the output directory.",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			flags.PrintFlags(c.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := clientcmd.BuildConfigFromContext(kubeconfigPath, kubeContext)
			if err != nil {
				return fmt.Errorf("loading cluster credentials: %w", err)
			}
			opt.Config = cfg

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, err := dump.Run(ctx, opt)
			if err != nil {
				return err
			}
			return report.Err(opt.MaxPartialFailures)
		},
	}

	fs := rootCmd.Flags()
	fs.StringVar(&kubeconfigPath, "kubeconfig", os.Getenv("KUBECONFIG"), "Path to the kubeconfig file; falls back to in-cluster config when empty")
	fs.StringVar(&kubeContext, "context", "", "Kubeconfig context to use")
	fs.StringVarP(&opt.OutputDir, "out", "o", "", "Directory the dump is written to")
	fs.StringSliceVar(&opt.Namespaces, "namespaces", nil, "Namespaces to dump; all when empty")
	fs.StringSliceVar(&opt.IncludeKinds, "include-kinds", nil, "Kinds to dump (Kind.group, e.g. Deployment.apps); all when empty")
	fs.StringSliceVar(&opt.ExcludeKinds, "exclude-kinds", nil, "Kinds to skip (Kind.group)")
	fs.StringVarP(&opt.Selector, "selector", "l", "", "Label selector applied to every listing")
	fs.Int64Var(&opt.PageSize, "page-size", dump.DefaultPageSize, "Objects requested per list page")
	fs.IntVar(&opt.Concurrency, "concurrency", dump.DefaultConcurrency, "Maximum number of concurrently running enumeration jobs")
	fs.IntVar(&opt.MaxFatalFailures, "max-fatal-failures", 0, "Cancel the run after this many fatal job failures; 0 disables")
	fs.IntVar(&opt.MaxPartialFailures, "max-partial-failures", 0, "Number of partial job failures tolerated before the exit code reports failure")
	fs.BoolVar(&opt.Sanitize, "sanitize", false, "Strip volatile server-populated fields from dumped objects")
	fs.BoolVar(&opt.PodLogs, "pod-logs", false, "Also capture current and previous container logs for every dumped pod")
	_ = rootCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(v.NewCmdVersion())
	return rootCmd
}
