// Command sdsstat prints mean/stddev/min/max/median for a numeric
// column, the nearest equivalent of the original toolkit's sddsstat.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rtsoliday/sds"
	"github.com/rtsoliday/sds/internal/stats"
)

func main() {
	fs := flag.NewFlagSet("sdsstat", flag.ExitOnError)
	column := fs.String("column", "", "column name to summarize")
	fs.Parse(os.Args[1:])
	if fs.NArg() != 1 || *column == "" {
		log.Fatalf("usage: sdsstat -column <name> <file>")
	}
	path := fs.Arg(0)

	ds, err := sds.InitializeInput(path, sds.DetectCompression(path), sds.ReadAccess)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	defer ds.Terminate(false)

	if err := ds.ReadLayout(); err != nil {
		log.Fatalf("read layout: %v", err)
	}

	for page := 1; ; page++ {
		ok, err := ds.ReadPage()
		if err != nil {
			log.Fatalf("read page %d: %v", page, err)
		}
		if !ok {
			break
		}
		s, err := stats.Column(ds, *column)
		if err != nil {
			log.Fatalf("page %d: %v", page, err)
		}
		fmt.Printf("page %d: n=%d mean=%g stddev=%g min=%g max=%g median=%g\n",
			page, s.N, s.Mean, s.StdDev, s.Min, s.Max, s.Median)
	}
}
