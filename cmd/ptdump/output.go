// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package main

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/siderolabs/gen/xslices"
	"github.com/siderolabs/go-pointer"
	"gopkg.in/yaml.v3"

	"github.com/siderolabs/go-parttable/partitioning"
	"github.com/siderolabs/go-parttable/partitioning/gpt"
	"github.com/siderolabs/go-parttable/partitioning/mbr"
)

const (
	outputTable = "table"
	outputYAML  = "yaml"
)

// record is a single printed partition.
type record struct {
	Number  int     `yaml:"number"`
	Device  string  `yaml:"device,omitempty"`
	Start   uint64  `yaml:"start"`
	End     uint64  `yaml:"end"`
	Sectors uint64  `yaml:"sectors"`
	Type    string  `yaml:"type"`
	Name    *string `yaml:"name,omitempty"`
}

func newRecord(p partitioning.Partition, device string) record {
	r := record{
		Number:  p.GetNumber(),
		Start:   p.GetStart(),
		End:     p.GetEnd(),
		Sectors: partitioning.Length(p),
		Type:    p.GetType(),
	}

	if device != "" {
		r.Device = partitioning.DevName(device, uint(p.GetNumber())+1)
	}

	return r
}

func mbrRecords(parts []mbr.Partition, device string) []record {
	return xslices.Map(parts, func(p mbr.Partition) record {
		return newRecord(p, device)
	})
}

func gptRecords(parts []gpt.Partition, device string) []record {
	return xslices.Map(parts, func(p gpt.Partition) record {
		r := newRecord(p, device)
		r.Name = pointer.To(p.Name)

		return r
	})
}

type document struct {
	Table      string   `yaml:"table"`
	Partitions []record `yaml:"partitions"`
}

func printRecords(w io.Writer, format, table string, records []record) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(document{Table: table, Partitions: records}); err != nil {
			return err
		}

		return enc.Close()
	case outputTable:
		return printTable(w, records)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// printTable prints an aligned table, the DEVICE column is present only for block devices.
func printTable(w io.Writer, records []record) error {
	withDevice := slices.ContainsFunc(records, func(r record) bool { return r.Device != "" })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if withDevice {
		fmt.Fprint(tw, "DEVICE\t")
	}

	fmt.Fprintln(tw, "NUMBER\tSTART\tEND\tSECTORS\tTYPE\tNAME")

	for _, r := range records {
		var name string

		if r.Name != nil {
			name = *r.Name
		}

		if withDevice {
			fmt.Fprintf(tw, "%s\t", r.Device)
		}

		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\n", r.Number, r.Start, r.End, r.Sectors, r.Type, name)
	}

	return tw.Flush()
}
