// This file is part of go-mc/server project.
// Copyright (C) 2023.  Tnze
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Command tracedump prints an entity trace recorded by the server.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"FlowySync/world"
)

var summary = flag.Bool("summary", false, "Only print message counts per packet id")

func main() {
	flag.Parse()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tracedump [-summary] <trace file>")
		os.Exit(2)
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		logger.Fatal("Open trace fail", zap.Error(err))
	}
	defer f.Close()

	if err := dump(os.Stdout, f, *summary); err != nil {
		logger.Fatal("Read trace fail", zap.Error(err))
	}
}

func dump(out io.Writer, in io.Reader, summaryOnly bool) error {
	r, err := world.NewTraceReader(in)
	if err != nil {
		return err
	}
	defer r.Close()
	fmt.Fprintf(out, "session %s\n", r.Session())

	counts := make(map[string]int)
	var order []string
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		name := fmt.Sprint(rec.PacketID)
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
		if !summaryOnly {
			fmt.Fprintf(out, "%8d %-32s %4d bytes\n", rec.Tick, name, len(rec.Data))
		}
	}
	for _, name := range order {
		fmt.Fprintf(out, "%-32s %d\n", name, counts[name])
	}
	return nil
}
