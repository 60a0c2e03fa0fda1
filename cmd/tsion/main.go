// tsion - TSION codec CLI tool
//
// Usage:
//
//	tsion encode [flags] [file]   Convert JSON (or JSONC) to TSION
//	tsion decode [flags] [file]   Convert TSION to pretty-printed JSON
//	tsion hash [file]             Print the BLAKE3 fingerprint of a JSON value
//	tsion version                 Print version info
//
// If no file is given, reads from stdin. Encoded output may be
// zstd-compressed with --compress; decode detects the zstd frame
// magic and decompresses transparently.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/Neumenon/tsion/tsion"
)

const (
	libVersion  = "0.2.0"
	specVersion = "1.0.0"
)

// zstd frame magic, little-endian on the wire.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	flags := pflag.NewFlagSet("tsion "+cmd, pflag.ExitOnError)
	compress := flags.BoolP("compress", "z", false, "zstd-compress encoded output")
	flags.Usage = printUsage
	if err := flags.Parse(os.Args[2:]); err != nil {
		fatal("parse flags: %v", err)
	}

	var input io.Reader = os.Stdin
	if args := flags.Args(); len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			fatal("open file: %v", err)
		}
		defer f.Close()
		input = f
	}

	switch cmd {
	case "encode", "from-json":
		cmdEncode(input, *compress)
	case "decode", "to-json":
		cmdDecode(input)
	case "hash":
		cmdHash(input)
	case "version", "-v", "--version":
		fmt.Printf("tsion %s (spec %s)\n", libVersion, specVersion)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `tsion - TSION codec CLI tool

Usage:
  tsion encode [flags] [file]   Convert JSON (or JSONC) to TSION
  tsion decode [flags] [file]   Convert TSION to pretty-printed JSON
  tsion hash [file]             Print the BLAKE3 fingerprint of a JSON value
  tsion version                 Print version info

Flags:
  -z, --compress    zstd-compress encoded output (decode auto-detects)

Input may be JSONC: // comments, /* blocks */, and trailing commas are
stripped before parsing. If no file is given, reads from stdin.

Examples:
  echo '["a","a"]' | tsion encode | xxd
  echo '{"x":1,"y":2}' | tsion encode | tsion decode
  cat data.json | tsion encode -z > data.tsion.zst
  tsion decode data.tsion.zst
`)
}

// cmdEncode: JSON/JSONC -> TSION payload on stdout.
func cmdEncode(r io.Reader, compress bool) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}

	v, err := tsion.FromJSON(jsonc.ToJSON(data))
	if err != nil {
		fatal("parse JSON: %v", err)
	}

	out := []byte(tsion.Encode(v))
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			fatal("init zstd: %v", err)
		}
		out = enc.EncodeAll(out, nil)
		enc.Close()
	}

	if _, err := os.Stdout.Write(out); err != nil {
		fatal("write output: %v", err)
	}
}

// cmdDecode: TSION payload (optionally zstd-compressed) -> pretty JSON.
func cmdDecode(r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}

	if len(data) >= len(zstdMagic) && string(data[:4]) == string(zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			fatal("init zstd: %v", err)
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			fatal("decompress: %v", err)
		}
	}

	v, err := tsion.Decode(string(data))
	if err != nil {
		fatal("decode: %v", err)
	}

	jsonData, err := tsion.ToJSON(v)
	if err != nil {
		fatal("convert to JSON: %v", err)
	}

	// Pretty-print for human consumption. json.Indent keeps key order.
	var buf bytes.Buffer
	if err := json.Indent(&buf, jsonData, "", "  "); err == nil {
		jsonData = buf.Bytes()
	}
	fmt.Println(string(jsonData))
}

// cmdHash: JSON/JSONC -> BLAKE3 fingerprint of the encoded payload.
func cmdHash(r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}

	v, err := tsion.FromJSON(jsonc.ToJSON(data))
	if err != nil {
		fatal("parse JSON: %v", err)
	}

	fmt.Println(tsion.Fingerprint(v))
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "tsion: "+format+"\n", args...)
	os.Exit(1)
}
