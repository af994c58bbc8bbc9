// Command sdsconvert re-encodes a dataset with a different data mode,
// compression, or byte order, exercising the full read/write path the
// way the original toolkit's sddsconvert does.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/rtsoliday/sds"
)

func main() {
	fs := flag.NewFlagSet("sdsconvert", flag.ExitOnError)
	mode := fs.String("mode", "", "ascii|binary (default: keep input mode)")
	comp := fs.String("compression", "", "plain|gzip|lzma (default: detect from output extension)")
	endian := fs.String("endian", "", "big|little (binary mode only; default: keep input order)")
	columnMajor := fs.Bool("column-major", false, "write columns contiguously (binary mode only)")
	fs.Parse(os.Args[1:])
	if fs.NArg() != 2 {
		log.Fatalf("usage: sdsconvert [-mode ascii|binary] [-compression plain|gzip|lzma] [-endian big|little] <in> <out>")
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	in, err := sds.InitializeInput(inPath, sds.DetectCompression(inPath), sds.ReadAccess)
	if err != nil {
		log.Fatalf("open %s: %v", inPath, err)
	}
	defer in.Terminate(false)
	if err := in.ReadLayout(); err != nil {
		log.Fatalf("read layout: %v", err)
	}

	outComp := sds.DetectCompression(outPath)
	if *comp != "" {
		outComp = parseCompression(*comp)
	}

	out, err := sds.InitializeOutput(outPath, outComp, sds.NewLayout())
	if err != nil {
		log.Fatalf("open %s: %v", outPath, err)
	}
	defer out.Terminate(false)
	if err := out.CopyLayout(in); err != nil {
		log.Fatalf("copy layout: %v", err)
	}

	l := out.Layout()
	l.DataMode = in.Layout().DataMode
	l.ByteOrder = in.Layout().ByteOrder
	switch *mode {
	case "ascii":
		l.DataMode.Mode = sds.ASCIIMode
	case "binary":
		l.DataMode.Mode = sds.BinaryMode
	}
	switch *endian {
	case "big":
		l.ByteOrder = sds.BigEndian
	case "little":
		l.ByteOrder = sds.LittleEndian
	}
	if *columnMajor {
		l.DataMode.ColumnMajor = true
	}

	for page := 1; ; page++ {
		ok, err := in.ReadPage()
		if err != nil {
			log.Fatalf("read page %d: %v", page, err)
		}
		if !ok {
			break
		}
		if err := out.StartPage(in.NRows()); err != nil {
			log.Fatalf("start page %d: %v", page, err)
		}
		if err := out.CopyPage(in); err != nil {
			log.Fatalf("copy page %d: %v", page, err)
		}
		if err := out.WritePage(); err != nil {
			log.Fatalf("write page %d: %v", page, err)
		}
	}
}

func parseCompression(s string) sds.Compression {
	switch s {
	case "gzip":
		return sds.Gzip
	case "lzma":
		return sds.Lzma
	default:
		return sds.Plain
	}
}
