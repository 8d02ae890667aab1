package program

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Hash returns a stable content hash of the program, used to tag traces
// with the exact program that produced them.
//
// Strings are normalized to Unicode NFC before hashing so visually
// identical names hash identically regardless of how the editor encoded
// them. Fields are written in a fixed order and map keys are sorted, so
// the hash is independent of YAML formatting.
func (p *Program) Hash() string {
	h := sha256.New()
	writeString(h, p.Name)
	for _, in := range p.Inputs {
		writeString(h, in.Name)
		writeInts(h, in.Shape)
		writeFloats(h, in.Values)
		writeInt(h, len(in.Series))
		for _, row := range in.Series {
			writeFloats(h, row)
		}
	}
	for _, st := range p.Steps {
		writeString(h, st.Out)
		writeString(h, st.Op)
		writeInt(h, len(st.Args))
		for _, a := range st.Args {
			writeString(h, a)
		}
		keys := make([]string, 0, len(st.Params))
		for k := range st.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			writeString(h, k)
			fmt.Fprintf(h, "%v\x00", st.Params[k])
		}
	}
	for _, out := range p.Outputs {
		writeString(h, out)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeString(w io.Writer, s string) {
	io.WriteString(w, norm.NFC.String(s))
	w.Write([]byte{0})
}

func writeInt(w io.Writer, n int) {
	io.WriteString(w, strconv.Itoa(n))
	w.Write([]byte{0})
}

func writeInts(w io.Writer, ns []int) {
	writeInt(w, len(ns))
	for _, n := range ns {
		writeInt(w, n)
	}
}

func writeFloats(w io.Writer, fs []float64) {
	writeInt(w, len(fs))
	for _, f := range fs {
		io.WriteString(w, strconv.FormatFloat(f, 'g', -1, 64))
		w.Write([]byte{0})
	}
}
