package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alnah/go-txt2pdf/internal/sample"
)

func sampleCmd(env *Environment) *cobra.Command {
	var (
		size  string
		count int
		name  string
	)

	cmd := &cobra.Command{
		Use:   "sample [dir]",
		Short: "Generate Persian sample .txt files with tables",
		Long: `Write synthetic input files for load testing: Persian paragraphs and a
pipe table, repeated up to the requested size. Files go to dir (default:
the configured input directory).`,
		Example: `  txt2pdf sample --size 25MiB
  txt2pdf sample bench/ --size 1MB --count 8`,
		Args: argsRange(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := env.Config.Input.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			bytes, err := humanize.ParseBytes(size)
			if err != nil || bytes == 0 {
				return fmt.Errorf("%w: invalid --size %q", ErrUsage, size)
			}
			if count < 1 {
				return fmt.Errorf("%w: --count must be >= 1", ErrUsage)
			}

			for i := 1; i <= count; i++ {
				file := fmt.Sprintf("%s_%d.txt", name, i)
				if count == 1 {
					file = name + ".txt"
				}
				path, err := sample.Write(dir, file, int64(bytes))
				if err != nil {
					return fmt.Errorf("writing sample: %w", err)
				}
				env.Logger.Info().Str("file", path).Str("size", humanize.IBytes(bytes)).Msg("sample written")
				if !quiet(cmd) {
					fmt.Fprintln(env.Stdout, path)
				}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&size, "size", "1MiB", "approximate size per file, e.g. 512KB, 10MiB")
	fs.IntVar(&count, "count", 1, "number of files")
	fs.StringVar(&name, "name", "sample", "file name stem")
	return cmd
}
