package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ezrec/pbrain/config"
	"github.com/ezrec/pbrain/machine"
)

var rootCmd = &cobra.Command{
	Use:   "pbrain",
	Short: "PBrain12 virtual machine and operating system",
	Long: `pbrain runs PBrain12 programs under a multiprogramming kernel with
contiguous memory allocation, time slice scheduling and semaphores.

Programs are either program images (first line the memory requirement,
then one six character word per line) or assembler source with the .asm
extension.`,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

var (
	cfgFile string
	logFile string

	v      = viper.New()
	cfg    config.Config
	logger hclog.Logger
	rotate *lumberjack.Logger
)

// Persistent flags, with the configuration key each one sets.
var flagKeys = map[string]string{
	"memory":     config.KEY_MEMORY_SIZE,
	"policy":     config.KEY_POLICY,
	"time-slice": config.KEY_TIME_SLICE,
	"max-slice":  config.KEY_MAX_SLICE,
	"seed":       config.KEY_SEED,
	"verbose":    config.KEY_VERBOSE,
	"messages":   config.KEY_MESSAGES,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	def := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "configuration file")
	flags.StringVar(&logFile, "log-file", "", "also log to this file, rotated by size")
	flags.Int("memory", def.MemorySize, "words of memory")
	flags.String("policy", def.Policy.String(), "allocation policy: first, best or worst")
	flags.Int("time-slice", def.TimeSlice, "fixed time slice, or 0 for a random slice")
	flags.Int("max-slice", def.MaxSlice, "longest random time slice")
	flags.Uint64("seed", def.Seed, "seed of the random time slice")
	flags.BoolP("verbose", "v", false, "narrate allocator, scheduler and cpu actions")
	flags.BoolP("messages", "m", false, "report diagnostics")

	bindFlags(v, flags)
	config.Bind(v)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(asmCmd)
	rootCmd.AddCommand(debugCmd)
	rootCmd.AddCommand(configCmd)
}

// bindFlags binds the persistent flags to their configuration keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		err := v.BindPFlag(key, flags.Lookup(name))
		if err != nil {
			panic(err)
		}
	}
}

// setup loads the configuration and builds the logger.
func setup(cmd *cobra.Command, args []string) (err error) {
	if len(cfgFile) != 0 {
		v.SetConfigFile(cfgFile)
		err = v.ReadInConfig()
		if err != nil {
			return
		}
	}

	cfg, err = config.Load(v)
	if err != nil {
		return
	}

	var output io.Writer = os.Stderr
	if len(logFile) != 0 {
		rotate = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		output = io.MultiWriter(os.Stderr, rotate)
	}

	logger = newLogger(cfg, output)
	return
}

func teardown(cmd *cobra.Command, args []string) (err error) {
	if rotate != nil {
		err = rotate.Close()
	}
	return
}

// newLogger returns the logger for the configuration's verbosity.
func newLogger(cfg config.Config, output io.Writer) hclog.Logger {
	level := hclog.Error
	if cfg.Messages {
		level = hclog.Warn
	}
	if cfg.Verbose {
		level = hclog.Debug
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   "pbrain",
		Output: output,
		Level:  level,
	})
}

// queuePrograms queues the programs of a directory, then the named
// program files. Files that fail to load are logged and skipped.
func queuePrograms(m *machine.Machine, dir string, names []string) (queued int, err error) {
	if len(dir) != 0 {
		var pids []int
		pids, err = m.QueueDir(os.DirFS(dir), ".")
		queued += len(pids)
		if err != nil {
			logger.Error("load", "dir", dir, "error", err)
		}
	}

	for _, name := range names {
		base, file := filepath.Split(name)
		if len(base) == 0 {
			base = "."
		}

		_, err = m.QueueFile(os.DirFS(base), file)
		if err != nil {
			logger.Error("load", "error", err)
			continue
		}
		queued++
	}

	err = nil
	if queued == 0 {
		err = ErrNoPrograms
	}

	return
}
