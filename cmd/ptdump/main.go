// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package main implements ptdump, a tool to print MBR and GPT partition tables of disk images.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/go-parttable/partitioning/gpt"
	"github.com/siderolabs/go-parttable/partitioning/mbr"
)

const (
	tableAuto = "auto"
	tableMBR  = "mbr"
	tableGPT  = "gpt"
)

type flags struct {
	table           string
	output          string
	sectorSize      uint
	maxDecompressed int64
	validate        bool
	debug           bool
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "ptdump IMAGE",
		Short:        "Print the MBR or GPT partition table of a disk image or block device",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(f.debug, cmd.ErrOrStderr())

			defer logger.Sync() //nolint:errcheck

			return run(cmd.OutOrStdout(), args[0], f, logger)
		},
	}

	cmd.Flags().StringVar(&f.table, "table", tableAuto, "partition table to decode: auto, mbr or gpt")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputTable, "output format: table or yaml")
	cmd.Flags().UintVar(&f.sectorSize, "sector-size", 0, "logical sector size in bytes (default: detected, or 512)")
	cmd.Flags().Int64Var(&f.maxDecompressed, "max-decompressed-size", defaultMaxDecompressedSize,
		"compressed images are decompressed into memory, only this many leading bytes are kept")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "verify GPT header signature and checksums")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "enable debug logging")

	return cmd
}

func newLogger(debug bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), level)

	return zap.New(core)
}

func run(w io.Writer, path string, f flags, logger *zap.Logger) error {
	switch f.table {
	case tableAuto, tableMBR, tableGPT:
	default:
		return fmt.Errorf("unknown partition table %q", f.table)
	}

	switch f.output {
	case outputTable, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", f.output)
	}

	if f.maxDecompressed <= 0 {
		return fmt.Errorf("max decompressed size should be positive, got %d", f.maxDecompressed)
	}

	img, err := openImage(path, f.maxDecompressed, logger)
	if err != nil {
		return err
	}

	defer img.Close() //nolint:errcheck

	sectorSize := img.sectorSize
	if f.sectorSize != 0 {
		sectorSize = f.sectorSize
	}

	logger.Debug("decoding image", zap.String("path", path), zap.Uint("sector_size", sectorSize), zap.String("table", f.table))

	table := f.table

	var mbrParts []mbr.Partition

	if table != tableGPT {
		mbrParts, err = mbr.Read(img, mbr.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("failed to decode MBR: %w", err)
		}

		if table == tableAuto {
			table = tableMBR

			if mbr.IsProtective(mbrParts) {
				logger.Debug("found GPT protective MBR")

				table = tableGPT
			}
		}
	}

	var records []record

	switch table {
	case tableMBR:
		records = mbrRecords(mbrParts, img.devicePath())
	case tableGPT:
		opts := []gpt.Option{
			gpt.WithSectorSize(sectorSize),
			gpt.WithLogger(logger),
		}

		if f.validate {
			opts = append(opts, gpt.WithHeaderValidation())
		}

		gptParts, err := gpt.Decode(img, opts...)
		if err != nil {
			return fmt.Errorf("failed to decode GPT: %w", err)
		}

		records = gptRecords(gptParts, img.devicePath())
	}

	return printRecords(w, f.output, table, records)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
