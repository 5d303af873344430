// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/smartprobe/internal/api/registry"
)

type printer func(w io.Writer, devices []registry.BlockDevice) error

func newPrinter(format string) (printer, error) {
	switch format {
	case "table", "":
		return printTable, nil
	case "json":
		return printJSON, nil
	case "yaml":
		return printYAML, nil
	default:
		return nil, fmt.Errorf("unknown output format %q, must be one of table, json, yaml", format)
	}
}

func printJSON(w io.Writer, devices []registry.BlockDevice) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}

func printYAML(w io.Writer, devices []registry.BlockDevice) error {
	data, err := yaml.Marshal(devices)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func printTable(w io.Writer, devices []registry.BlockDevice) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "DEVICE\tPRODUCT\tID\tFLAGS\tVALUE\tWORST\tRAW"); err != nil {
		return err
	}
	for _, d := range devices {
		if d.SMART == nil {
			continue
		}
		product := "-"
		if d.SMART.ProductID != nil {
			product = *d.SMART.ProductID
		}
		if d.SMART.Error != "" {
			if _, err := fmt.Fprintf(tw, "%s\t%s\terror: %s\n", d.Path, product, d.SMART.Error); err != nil {
				return err
			}
			continue
		}
		for _, a := range d.SMART.Attributes {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\t0x%04x\t%d\t%d\t%d\n", d.Path, product, a.ID, a.Flags, a.Value, a.Worst, a.Raw); err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}
