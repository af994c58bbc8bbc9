// Command sdsdump prints a dataset's layout and, optionally, its page
// contents, the nearest equivalent of the original toolkit's
// sddsprintout for a from-scratch port.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/rtsoliday/sds"
)

func main() {
	fs := flag.NewFlagSet("sdsdump", flag.ExitOnError)
	showData := fs.Bool("data", false, "also print page contents")
	fs.Parse(os.Args[1:])
	if fs.NArg() != 1 {
		log.Fatalf("usage: sdsdump [-data] <file>")
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

	terse := !isatty.IsTerminal(os.Stdout.Fd())
	printLayout(ds, terse)

	if !*showData {
		return
	}
	for page := 1; ; page++ {
		ok, err := ds.ReadPage()
		if err != nil {
			log.Fatalf("read page %d: %v", page, err)
		}
		if !ok {
			break
		}
		printPage(ds, page, terse)
	}
}

func printLayout(ds *sds.Dataset, terse bool) {
	l := ds.Layout()
	if terse {
		fmt.Printf("version=%d params=%d arrays=%d columns=%d\n",
			l.Version(), len(l.Parameters), len(l.Arrays), len(l.Columns))
		return
	}
	fmt.Printf("SDS version %d (%s, %s)\n", l.Version(), l.DataMode.Mode, l.ByteOrder)
	if l.Description != "" {
		fmt.Printf("description: %s\n", l.Description)
	}
	for _, p := range l.Parameters {
		fmt.Printf("  parameter %-20s %s\n", p.Name, p.Type.Name())
	}
	for _, a := range l.Arrays {
		fmt.Printf("  array     %-20s %s[%d]\n", a.Name, a.Type.Name(), a.Dimensions)
	}
	for _, c := range l.Columns {
		fmt.Printf("  column    %-20s %s\n", c.Name, c.Type.Name())
	}
}

func printPage(ds *sds.Dataset, page int, terse bool) {
	fmt.Printf("--- page %d: %d rows ---\n", page, ds.NRows())
	l := ds.Layout()
	for i, p := range l.Parameters {
		v, _ := ds.ParameterValue(i)
		fmt.Printf("%s = %v\n", p.Name, v)
	}
	if terse {
		return
	}
	for r := 0; r < ds.NRows(); r++ {
		for i, c := range l.Columns {
			v, _ := ds.ColumnValue(i, r)
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(v)
			_ = c
		}
		fmt.Println()
	}
}
